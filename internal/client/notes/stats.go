package notes

import (
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/GophNotes/internal/models"
)

// LongNoteChars is the length above which a note is flagged as long.
const LongNoteChars = 500

// Stats summarises a note for the list view.
type Stats struct {
	Words int
	Chars int
	Long  bool
}

// StatsOf counts the words and characters of the note content.
func StatsOf(n models.Note) Stats {
	chars := utf8.RuneCountInString(n.Content)
	return Stats{
		Words: len(strings.Fields(n.Content)),
		Chars: chars,
		Long:  chars > LongNoteChars,
	}
}

// DisplayTitle returns the title to show for n.
func DisplayTitle(n models.Note) string {
	if strings.TrimSpace(n.Title) == "" {
		return models.DefaultNoteTitle
	}
	return n.Title
}

// Preview returns the first line of the content cut to max runes.
func Preview(n models.Note, max int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(n.Content), "\n")
	if line == "" {
		return "No content yet. Start writing..."
	}
	if utf8.RuneCountInString(line) <= max {
		return line
	}
	r := []rune(line)
	return string(r[:max]) + "…"
}
