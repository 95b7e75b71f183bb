// Package maxent implements a log-linear tag scorer over feature templates
// that look at words and at neighbouring tags.
package maxent

import (
	"math"

	"github.com/pkg/errors"
)

// Model is a log-linear model: each fired feature adds its weight for every
// tag it has a weight for.
type Model struct {
	NumTags int
	// Templates always fire; RareTemplates fire only for rare words.
	Templates     []Template
	RareTemplates []Template
	// Feats[feature_string][tag_id] = weight
	// feature_string is "<template>:<value>", e.g. "w-1:the"
	Feats map[string]map[int]float64
}

// NewModel creates a model with no weights over numTags tags.
func NewModel(numTags int, arch, rareArch []string) (*Model, error) {
	templates, err := LookupTemplates(arch)
	if err != nil {
		return nil, err
	}
	rare, err := LookupTemplates(rareArch)
	if err != nil {
		return nil, err
	}
	return &Model{
		NumTags:       numTags,
		Templates:     templates,
		RareTemplates: rare,
		Feats:         make(map[string]map[int]float64),
	}, nil
}

// Arch returns the template names of the model.
func (m *Model) Arch() (arch, rareArch []string) {
	for _, t := range m.Templates {
		arch = append(arch, t.Name)
	}
	for _, t := range m.RareTemplates {
		rareArch = append(rareArch, t.Name)
	}
	return arch, rareArch
}

// LeftWindow is the furthest tag to the left any template looks at.
func (m *Model) LeftWindow() int {
	w := 0
	for _, t := range m.Templates {
		w = max(w, t.Left)
	}
	for _, t := range m.RareTemplates {
		w = max(w, t.Left)
	}
	return w
}

// RightWindow is the furthest tag to the right any template looks at.
func (m *Model) RightWindow() int {
	w := 0
	for _, t := range m.Templates {
		w = max(w, t.Right)
	}
	for _, t := range m.RareTemplates {
		w = max(w, t.Right)
	}
	return w
}

// SetWeight sets the weight of feature for tag. A zero weight removes it.
func (m *Model) SetWeight(feat string, tag int, w float64) error {
	if tag < 0 || tag >= m.NumTags {
		return errors.Errorf("tag id %d out of range [0, %d)", tag, m.NumTags)
	}
	if w == 0 {
		if weights, ok := m.Feats[feat]; ok {
			delete(weights, tag)
			if len(weights) == 0 {
				delete(m.Feats, feat)
			}
		}
		return nil
	}
	if m.Feats[feat] == nil {
		m.Feats[feat] = make(map[int]float64)
	}
	m.Feats[feat][tag] = w
	return nil
}

// Weight returns the weight of feature for tag.
func (m *Model) Weight(feat string, tag int) float64 {
	return m.Feats[feat][tag]
}

func (m *Model) addScores(h *History, templates []Template, local bool, scores []float64) {
	for _, t := range templates {
		if t.Local() != local {
			continue
		}
		for tag, w := range m.Feats[t.Feature(h)] {
			scores[tag] += w
		}
	}
}

// LocalScores sums, for every tag, the weights of the features that depend
// on words only. The result does not change with the tags in h.
func (m *Model) LocalScores(h *History, rare bool) []float64 {
	scores := make([]float64, m.NumTags)
	m.addScores(h, m.Templates, true, scores)
	if rare {
		m.addScores(h, m.RareTemplates, true, scores)
	}
	return scores
}

// DynamicScores sums, for every tag, the weights of the features that look
// at neighbouring tags.
func (m *Model) DynamicScores(h *History, rare bool) []float64 {
	scores := make([]float64, m.NumTags)
	m.addScores(h, m.Templates, false, scores)
	if rare {
		m.addScores(h, m.RareTemplates, false, scores)
	}
	return scores
}

// Scores returns the log-probability of every tag at h.Current given h.
// local may be nil, in which case it is computed.
func (m *Model) Scores(h *History, rare bool, local []float64) []float64 {
	if local == nil {
		local = m.LocalScores(h, rare)
	}
	scores := m.DynamicScores(h, rare)
	for i := range scores {
		scores[i] += local[i]
	}
	LogNormalize(scores)
	return scores
}

// LogNormalize subtracts the log-sum-exp of scores from every entry so that
// their exponentials sum to one.
func LogNormalize(scores []float64) {
	if len(scores) == 0 {
		return
	}
	peak := math.Inf(-1)
	for _, s := range scores {
		peak = max(peak, s)
	}
	if math.IsInf(peak, 0) {
		return
	}
	sum := 0.0
	for _, s := range scores {
		sum += math.Exp(s - peak)
	}
	logZ := peak + math.Log(sum)
	for i := range scores {
		scores[i] -= logZ
	}
}
