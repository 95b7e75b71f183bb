package tagset

import "slices"

// closedPresets lists tags known to be closed class for each supported
// treebank tag set.
var closedPresets = map[string][]string{
	"": nil,
	"english": {
		".", ",", "``", "''", ":", "$", "EX", "(", ")", "#", "MD", "CC", "DT", "LS",
		"PDT", "POS", "PRP", "PRP$", "RP", "TO", EOSTag, "UH", "WDT", "WP", "WP$", "WRB",
		"-LRB-", "-RRB-",
	},
	"polish": {
		".", ",", "``", "''", ":", "$", "(", ")", "#", "POS", EOSTag,
		"ppron12", "ppron3", "siebie", "qub", "conj",
	},
	// Chinese Treebank 5.
	"chinese": {
		"AS", "BA", "CC", "CS", "DEC", "DEG", "DER", "DEV", "DT", "ETC", "IJ", "LB",
		"LC", "P", "PN", "PU", "SB", "SP", "VC", "VE",
	},
	// Kulick tag set.
	"arabic": {"PUNC", "CC", "CPRP$", EOSTag},
	// STTS as used in Negra/Tiger; only tags whose training sets are complete.
	"german": {
		"$,", "$.", "$(", "--", EOSTag, "KOKOM", "PPOSS", "PTKA", "PTKNEG", "PWAT",
		"VAINF", "VAPP", "VMINF", "VMPP",
	},
	// French Treebank: only punctuation is reliably closed.
	"french": {
		"!", "\"", "*", ",", "-", "-LRB-", "-RRB-", ".", "...", "/", ":", ";", "=", "?",
		"[", "]",
	},
	"spanish": {
		EOSTag, "cc", "cs",
		"faa", "fat", "fc", "fca", "fct", "fd", "fe", "fg", "fh", "fia", "fit", "fla",
		"flt", "fp", "fpa", "fpt", "fra", "frc", "fs", "ft", "fx", "fz",
	},
	"medpost": {
		".", ",", "``", "''", ":", "$", "EX", "(", ")", "VM", "CC", "DD", "DB", "GE",
		"PND", "PNG", "TO", EOSTag, "-LRB-", "-RRB-",
	},
	"testing": {".", EOSTag},
}

// Languages returns the non-empty names accepted by New, sorted.
func Languages() []string {
	names := make([]string, 0, len(closedPresets))
	for name := range closedPresets {
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
