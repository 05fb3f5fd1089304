// Package bank loads and indexes the read-only question bank. Questions
// come from CSV exports with Topic, Subtopic, Question, Answer, Problem
// difficulty and Output columns; subtopic ids are stored as
// "{Topic}: {Subtopic}" so identically named subdivisions under different
// topics stay distinct. The bank is loaded once per process and never
// mutated by the scheduler.
package bank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

// Curated authoring-time blocklist: questions that are effectively
// copy/paste of the prompt. Applied before the bank reaches the selector.
var curatedExcludedIDs = map[int]bool{
	9: true, 20: true, 21: true, 33: true, 39: true, 44: true,
	45: true, 57: true, 88: true, 161: true, 188: true, 203: true,
	221: true, 222: true, 223: true, 226: true,
}

// Bank is an immutable, indexed question collection.
type Bank struct {
	questions   []engine.Question
	byID        map[int]engine.Question
	bySubtopic  map[string][]engine.Question
	subtopicIDs []string
}

// Load reads one or more CSV files into a bank. IDs are assigned
// sequentially across files in the order given, matching the original
// export ordering, then the curated blocklist is applied.
func Load(paths ...string) (*Bank, error) {
	var questions []engine.Question
	nextID := 1
	for _, path := range paths {
		loaded, next, err := loadCSV(path, nextID)
		if err != nil {
			return nil, fmt.Errorf("loading question bank %s: %w", path, err)
		}
		questions = append(questions, loaded...)
		nextID = next
	}

	kept := questions[:0]
	for _, q := range questions {
		if !curatedExcludedIDs[q.ID] {
			kept = append(kept, q)
		}
	}
	return New(kept), nil
}

// New indexes an already-loaded question slice.
func New(questions []engine.Question) *Bank {
	b := &Bank{
		questions:  questions,
		byID:       make(map[int]engine.Question, len(questions)),
		bySubtopic: make(map[string][]engine.Question),
	}
	for _, q := range questions {
		b.byID[q.ID] = q
		b.bySubtopic[q.SubtopicID] = append(b.bySubtopic[q.SubtopicID], q)
	}
	for id := range b.bySubtopic {
		b.subtopicIDs = append(b.subtopicIDs, id)
	}
	sort.Strings(b.subtopicIDs)
	return b
}

// Questions returns every question in the bank.
func (b *Bank) Questions() []engine.Question { return b.questions }

// ByID looks a question up by id.
func (b *Bank) ByID(id int) (engine.Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// BySubtopic returns all questions in one subtopic.
func (b *Bank) BySubtopic(subtopicID string) []engine.Question {
	return b.bySubtopic[subtopicID]
}

// SubtopicIDs returns the sorted subtopic ids present in the bank.
func (b *Bank) SubtopicIDs() []string { return b.subtopicIDs }

// loadCSV reads a single CSV export. Leading empty rows before the header
// are skipped (some exports carry two blank rows), and columns are resolved
// by header name so column order doesn't matter across exports.
func loadCSV(path string, startID int) ([]engine.Question, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, startID, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, startID, err
	}

	var questions []engine.Question
	id := startID
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, id, fmt.Errorf("reading row: %w", err)
		}

		get := func(name string) string {
			idx, ok := header[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		topic := get("Topic")
		subtopicRaw := get("Subtopic")
		questionText := get("Question")
		if questionText == "" || subtopicRaw == "" {
			continue
		}
		subtopicID := subtopicRaw
		if topic != "" {
			subtopicID = topic + ": " + subtopicRaw
		}

		score, err := strconv.Atoi(get("Problem difficulty"))
		if err != nil {
			continue
		}

		questions = append(questions, engine.Question{
			ID:              id,
			Topic:           topic,
			SubtopicID:      subtopicID,
			QuestionText:    questionText,
			AnswerCode:      get("Answer"),
			DifficultyScore: score,
			DifficultyLabel: classifyDifficulty(questionText, score),
			ExpectedOutput:  get("Output"),
		})
		id++
	}
	return questions, id, nil
}

// readHeader advances past any blank leading rows and returns a column
// name -> index map for the first non-empty row.
func readHeader(r *csv.Reader) (map[string]int, error) {
	for {
		row, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		header := make(map[string]int, len(row))
		for i, cell := range row {
			header[strings.TrimSpace(cell)] = i
		}
		return header, nil
	}
}

// classifyDifficulty derives easy/medium/hard from the star marker in the
// question text, falling back to the numeric score.
func classifyDifficulty(questionText string, score int) string {
	switch {
	case strings.Contains(questionText, "★★★"):
		return "hard"
	case strings.Contains(questionText, "★★☆"):
		return "medium"
	case strings.Contains(questionText, "★☆☆"):
		return "easy"
	}
	switch {
	case score <= 35:
		return "easy"
	case score <= 65:
		return "medium"
	default:
		return "hard"
	}
}
