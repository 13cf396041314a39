package enrich

import "unicode"

// allowedScripts lists the Unicode scripts an artist name may use for the
// lookup to go ahead. Keys are names from unicode.Scripts.
var allowedScripts = map[string]bool{
	"Latin": true,
}

// IsLatin reports whether every letter in name belongs to an allowed script.
//
// Non-letters (spaces, punctuation, digits, symbols) are ignored, so a name
// without letters passes. A letter whose script is not in the policy table,
// or that belongs to no script at all, makes the name fail.
//
// Example:
//
//	IsLatin("Beyoncé")     // true
//	IsLatin("2 Chainz!")   // true
//	IsLatin("Мумий Тролль") // false
//	IsLatin("Rin 凛")      // false
func IsLatin(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) {
			continue
		}
		script, ok := scriptOf(r)
		if !ok || !allowedScripts[script] {
			return false
		}
	}
	return true
}

// scriptOf returns the name of the Unicode script r belongs to.
func scriptOf(r rune) (string, bool) {
	if unicode.Is(unicode.Latin, r) {
		return "Latin", true
	}
	for name, table := range unicode.Scripts {
		if unicode.Is(table, r) {
			return name, true
		}
	}
	return "", false
}
