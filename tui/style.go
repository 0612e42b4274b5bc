package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("54")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("141"))

	styleRoomDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("141"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleSpeaker = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("141")).
			Foreground(lipgloss.Color("228")).
			Bold(true).
			Padding(0, 1)

	styleSpeech = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindRoomDesc lineKind = iota
	kindYouSee
	kindExits
	kindDialogue
	kindChoice
	kindSystem
	kindError
	kindTrace
)

var refusalPrefixes = []string{
	"You don't see",
	"You can't",
	"You don't have",
	"You need to",
	"Your backpack is full",
	"Your clue board is full",
	"There is nothing",
	"Nothing happens",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case isChoiceLine(line), strings.HasPrefix(line, "> "):
		return kindChoice
	case strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")"):
		return kindSystem
	case containsQuotedSpeech(line):
		return kindDialogue
	}
	for _, p := range refusalPrefixes {
		if strings.HasPrefix(line, p) {
			return kindError
		}
	}
	return kindRoomDesc
}

// isChoiceLine matches the numbered reply lines, "  2) Not today.".
func isChoiceLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "  ")
	if !ok || len(rest) < 2 {
		return false
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	return i > 0 && i < len(rest) && rest[i] == ')'
}

// containsQuotedSpeech checks if a line contains speech in double quotes,
// as rule text usually quotes what characters say.
func containsQuotedSpeech(line string) bool {
	open := strings.IndexByte(line, '"')
	if open < 0 {
		return false
	}
	end := strings.IndexByte(line[open+1:], '"')
	return end > 5
}

// styledYouSee renders "You see: item1, item2." with item names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleRoomDesc.Render(line)
	}
	return styleRoomDesc.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
