package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/teatak/postag/config"
	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/tagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tagging over HTTP",
	Long: `Serve answers POST /tag with the tagged sentences of a JSON request and
reloads the model on POST /reload without dropping requests.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides [server].addr)")
}

// server holds the current tagger. Requests take a read lock only to fetch
// it, so a reload never waits for tagging to finish.
type server struct {
	cfg *config.Config

	mu sync.RWMutex
	tg *tagger.Tagger

	logMu     sync.Mutex
	accessLog io.Writer
}

func newServer(cfg *config.Config, accessLog io.Writer) (*server, error) {
	s := &server{cfg: cfg, accessLog: accessLog}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload loads the model from disk and swaps it in.
func (s *server) reload() error {
	start := time.Now()
	tg, err := s.cfg.OpenTagger()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tg = tg
	s.mu.Unlock()
	klog.Infof("model loaded in %s", time.Since(start))
	return nil
}

func (s *server) tagger() *tagger.Tagger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tg
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tag", s.handleTag)
	mux.HandleFunc("POST /reload", s.handleReload)
	return mux
}

// TagRequest is the body of POST /tag. Text is tokenized one sentence per
// line; Sentences are taken as already tokenized.
type TagRequest struct {
	Text      string     `json:"text,omitempty"`
	Sentences [][]string `json:"sentences,omitempty"`
}

type TagResponse struct {
	ID        string                `json:"id"`
	Sentences [][]corpus.TaggedWord `json:"sentences"`
}

type errorResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Warningf("failed to write response: %v", err)
	}
}

func (s *server) handleTag(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{id, err.Error()})
		return
	}

	lt := lineTagger{tg: s.tagger(), reuse: s.cfg.Tagger.ReuseTags, separator: s.cfg.Corpus.TagSeparator}
	type sentence struct{ words, tags []string }
	var sentences []sentence
	for _, words := range req.Sentences {
		sentences = append(sentences, sentence{words: words})
	}
	if req.Text != "" {
		for _, line := range strings.Split(req.Text, "\n") {
			if words, tags := lt.split(line); len(words) > 0 {
				sentences = append(sentences, sentence{words, tags})
			}
		}
	}

	resp := TagResponse{ID: id, Sentences: make([][]corpus.TaggedWord, 0, len(sentences))}
	tokens := 0
	for _, sent := range sentences {
		tagged, err := lt.tag(sent.words, sent.tags)
		if err != nil {
			klog.Errorf("request %s: %v", id, err)
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{id, err.Error()})
			return
		}
		tokens += len(tagged)
		resp.Sentences = append(resp.Sentences, tagged)
	}
	klog.V(1).Infof("request %s: %d sentences, %d tokens", id, len(sentences), tokens)
	s.logRequest(id, req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) logRequest(id string, req TagRequest) {
	if s.accessLog == nil {
		return
	}
	line, err := json.Marshal(struct {
		ID   string    `json:"id"`
		Time time.Time `json:"time"`
		TagRequest
	}{id, time.Now().UTC(), req})
	if err != nil {
		return
	}
	s.logMu.Lock()
	defer s.logMu.Unlock()
	if _, err := s.accessLog.Write(append(line, '\n')); err != nil {
		klog.Warningf("failed to write access log: %v", err)
	}
}

func (s *server) handleReload(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	if err := s.reload(); err != nil {
		klog.Errorf("request %s: reload failed: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{id, err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "reloaded"})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	var accessLog io.Writer
	if cfg.Server.AccessLog != "" {
		f, err := os.OpenFile(cfg.Server.AccessLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrapf(err, "failed to open access log %q", cfg.Server.AccessLog)
		}
		defer f.Close()
		accessLog = f
	}

	s, err := newServer(cfg, accessLog)
	if err != nil {
		return errors.Wrap(err, "initial load failed")
	}
	klog.Infof("listening on %s", cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, s.handler())
}
