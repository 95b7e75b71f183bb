package maxent

// NA is what a History reports for words and tags outside the sentence.
const NA = "NA"

// History is the view a template extracts features from: the words of a
// sentence, the tags currently assigned around one position, and that
// position.
type History struct {
	Words   []string
	Tags    []string
	Current int
}

// Word returns the word at offset from the current position.
func (h *History) Word(offset int) string {
	i := h.Current + offset
	if i < 0 || i >= len(h.Words) {
		return NA
	}
	return h.Words[i]
}

// Tag returns the tag at offset from the current position. Positions whose
// tag is unset also read as NA.
func (h *History) Tag(offset int) string {
	i := h.Current + offset
	if i < 0 || i >= len(h.Tags) || h.Tags[i] == "" {
		return NA
	}
	return h.Tags[i]
}
