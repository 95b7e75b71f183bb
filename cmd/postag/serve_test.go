package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatak/postag/config"
	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/dictionary"
	"github.com/teatak/postag/maxent"
	"github.com/teatak/postag/tagger"
	"github.com/teatak/postag/tagset"
)

func testConfig(t *testing.T) *config.Config {
	tags := must.M1(tagset.New(""))
	for _, tag := range []string{"DT", "NN", "VB"} {
		tags.Add(tag)
	}
	tags.MarkClosed("DT")
	tags.MarkClosed(tagset.EOSTag)

	dict := dictionary.NewDictionary()
	dict.AddSentence([]string{"the", "dog", "runs"}, []string{"DT", "NN", "VB"})
	dict.Add("runs", "NN", 1)

	model := must.M1(maxent.NewModel(tags.Size(), []string{"w0", "t-1"}, nil))
	require.NoError(t, model.SetWeight("w0:runs", tags.Index("NN"), 0.5))
	require.NoError(t, model.SetWeight("t-1:NN", tags.Index("VB"), 2))
	require.NoError(t, model.SetWeight("t-1:DT", tags.Index("NN"), 2))
	require.NoError(t, model.SetWeight("t-1:VB", tags.Index("NN"), 1))
	tg := must.M1(tagger.New(tags, dict, model))

	cfg := config.Default()
	cfg.Model.Bundle = filepath.Join(t.TempDir(), "test.model")
	require.NoError(t, tg.SaveBundle(cfg.Model.Bundle))
	return cfg
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeTag(t *testing.T) {
	var accessLog bytes.Buffer
	s := must.M1(newServer(testConfig(t), &accessLog))
	h := s.handler()

	rec := post(t, h, "/tag", `{"text": "the dog runs\n\nthe cat runs", "sentences": [["dog", "runs", "runs"]]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TagResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	require.Len(t, resp.Sentences, 3)
	assert.Equal(t, []string{"NN", "VB", "NN"}, corpus.Tags(resp.Sentences[0]))
	assert.Equal(t, []string{"DT", "NN", "VB"}, corpus.Tags(resp.Sentences[1]))
	assert.Equal(t, []string{"the", "cat", "runs"}, corpus.Words(resp.Sentences[2]))
	assert.Equal(t, []string{"DT", "NN", "VB"}, corpus.Tags(resp.Sentences[2]))
	assert.Contains(t, accessLog.String(), resp.ID)
	assert.Equal(t, 1, strings.Count(accessLog.String(), "\n"))

	rec = post(t, h, "/tag", `{"text": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/tag", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Sentences)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tag", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeReuseTags(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tagger.ReuseTags = true
	s := must.M1(newServer(cfg, nil))
	h := s.handler()

	rec := post(t, h, "/tag", `{"text": "the dog_VB runs"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TagResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sentences, 1)
	require.Len(t, resp.Sentences[0], 3)
	assert.Equal(t, corpus.TaggedWord{Word: "dog", Tag: "VB"}, resp.Sentences[0][1])

	rec = post(t, h, "/tag", `{"text": "the dog_XX"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServeReload(t *testing.T) {
	cfg := testConfig(t)
	s := must.M1(newServer(cfg, nil))
	before := s.tagger()

	rec := post(t, s.handler(), "/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotSame(t, before, s.tagger())

	cfg.Model.Bundle = filepath.Join(t.TempDir(), "missing.model")
	current := s.tagger()
	rec = post(t, s.handler(), "/reload", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Same(t, current, s.tagger())
}

func TestLineTaggerSplit(t *testing.T) {
	lt := lineTagger{separator: "_"}
	words, tags := lt.split("the dog_VB runs")
	assert.Equal(t, []string{"the", "dog", "_", "VB", "runs"}, words)
	assert.Nil(t, tags)

	lt.reuse = true
	words, tags = lt.split("the dog_VB runs _x y_")
	assert.Equal(t, []string{"the", "dog", "runs", "_", "x", "y", "_"}, words)
	assert.Equal(t, []string{"", "VB", "", "", "", "", ""}, tags)
}

func TestFormat(t *testing.T) {
	tagged := []corpus.TaggedWord{{Word: "the", Tag: "DT"}, {Word: "狗", Tag: "NN"}}
	assert.Equal(t, "the/DT 狗/NN\n", tagOutput{separator: "/"}.format(tagged))
	assert.Equal(t, "the  DT\n狗   NN\n\n", tagOutput{columns: true}.format(tagged))
}
