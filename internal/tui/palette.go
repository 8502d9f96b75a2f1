package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"
)

// Command is one palette entry. Run mutates the model directly and may
// return a follow-up command for slow work.
type Command struct {
	Name string
	Desc string
	Run  func(a *App, args []string) tea.Cmd
}

// CommandRegistry holds the palette commands in display order.
type CommandRegistry struct {
	commands []Command
}

func newRegistry(commands []Command) *CommandRegistry {
	return &CommandRegistry{commands: commands}
}

// Find returns the command named exactly name.
func (r *CommandRegistry) Find(name string) (Command, bool) {
	for _, c := range r.commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Search returns the commands matching query, best first. An empty query
// returns everything in registry order.
func (r *CommandRegistry) Search(query string) []Command {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Command, len(r.commands))
		copy(out, r.commands)
		return out
	}

	type hit struct {
		cmd   Command
		score int
		pos   int
	}
	var hits []hit
	for i, c := range r.commands {
		ok, score := fuzzyMatchScore(c.Name, query)
		if !ok {
			continue
		}
		hits = append(hits, hit{cmd: c, score: score, pos: i})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	out := make([]Command, len(hits))
	for i, h := range hits {
		out[i] = h.cmd
	}
	return out
}

// Closest returns the command name nearest to input for "did you mean"
// hints. ok is false when nothing is within editing distance 3.
func (r *CommandRegistry) Closest(input string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	best := ""
	bestDist := 4
	for _, c := range r.commands {
		d := levenshtein.ComputeDistance(input, c.Name)
		if d < bestDist {
			best = c.Name
			bestDist = d
		}
	}
	return best, best != ""
}

// fuzzyMatchScore reports whether query matches label as a subsequence and
// how strong the match is. First-character and consecutive hits rank higher,
// an exact match beats everything.
func fuzzyMatchScore(label, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	labelLower := strings.ToLower(label)
	queryLower := strings.ToLower(query)

	matchIdx := make([]int, 0, len(queryLower))
	searchFrom := 0
	for i := 0; i < len(queryLower); i++ {
		ch := queryLower[i]
		found := false
		for j := searchFrom; j < len(labelLower); j++ {
			if labelLower[j] == ch {
				matchIdx = append(matchIdx, j)
				searchFrom = j + 1
				found = true
				break
			}
		}
		if !found {
			return false, 0
		}
	}

	score := len(queryLower)
	if len(matchIdx) > 0 && matchIdx[0] == 0 {
		score += 10
	}
	for i := 1; i < len(matchIdx); i++ {
		if matchIdx[i] == matchIdx[i-1]+1 {
			score += 3
		}
	}
	if strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(query)) {
		score += 20
	}
	return true, score
}
