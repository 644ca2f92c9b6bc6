// Demo scoring server for trying biasprobe without a real model.
// It speaks the remote predictor protocol and scores 0.9 for any text
// containing a trigger word, 0.1 otherwise, so keyword swaps produce
// visible probability shifts.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type scoreRequest struct {
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
	Error         string      `json:"error,omitempty"`
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	triggers := flag.String("triggers", "he,him,his", "comma-separated words that trip the classifier")
	flag.Parse()

	words := make(map[string]bool)
	for _, w := range strings.Split(*triggers, ",") {
		if w = strings.TrimSpace(strings.ToLower(w)); w != "" {
			words[w] = true
		}
	}

	http.HandleFunc("/score", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST only")
			return
		}

		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}

		resp := scoreResponse{Probabilities: make([][]float64, len(req.Texts))}
		for i, text := range req.Texts {
			p := score(text, words)
			resp.Probabilities[i] = []float64{1 - p, p}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	fmt.Printf("Demo classifier listening on %s (triggers: %s)\n", *addr, *triggers)
	fmt.Println("Try: biasprobe probe texts.txt --predictor remote --endpoint http://localhost:8000/score")
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func score(text string, triggers map[string]bool) float64 {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		if triggers[strings.Trim(field, ".,;:!?\"'()")] {
			return 0.9
		}
	}
	return 0.1
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(scoreResponse{Error: msg})
}
