package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/nathoo/witchlight/engine/dialogue"
	"github.com/nathoo/witchlight/engine/events"
	"github.com/nathoo/witchlight/engine/save"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

// testDefs builds a small game: a cottage with a cauldron, a granny and a
// clock, a garden with a herb patch and a clue, a cellar and a bad ending.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:         "Hollow Hill",
			Version:       "1.0",
			Start:         "cottage",
			Intro:         "Granny Wick needs a draught before nightfall.",
			BackpackSlots: 3,
			ClueSlots:     2,
		},
		Rooms: map[string]types.RoomDef{
			"cottage": {
				ID:          "cottage",
				Description: "A crooked cottage under a sagging thatch.",
				Exits:       map[string]string{"out": "garden"},
				Rules: []types.RuleDef{
					{
						ID:    "cottage_smell_moonwater",
						Scope: "room:cottage",
						When:  types.MatchCriteria{Verb: "smell", Object: "moonwater"},
						Effects: []types.Effect{
							{Type: "say", Params: map[string]any{"text": "It smells of rain."}},
						},
					},
				},
			},
			"garden": {
				ID:          "garden",
				Description: "An overgrown garden.",
				Exits:       map[string]string{"in": "cottage"},
			},
			"cellar":  {ID: "cellar", Description: "A damp cellar."},
			"bad_end": {ID: "bad_end", Description: "The candles gutter out.", Ending: true},
		},
		Entities: map[string]types.EntityDef{
			"moonwater":  {ID: "moonwater", Kind: "item", Props: map[string]any{"location": "cottage", "description": "Water left out under a full moon."}},
			"silverleaf": {ID: "silverleaf", Kind: "item", Props: map[string]any{}},
			"draught":    {ID: "draught", Kind: "item", Props: map[string]any{}},
			"herb_patch": {ID: "herb_patch", Kind: "source", Props: map[string]any{"name": "Herb Patch", "location": "garden"}},
			"letter":     {ID: "letter", Kind: "clue", Props: map[string]any{"name": "Torn Letter", "location": "garden"}},
			"granny":     {ID: "granny", Kind: "npc", Props: map[string]any{"name": "Granny Wick", "location": "cottage", "dialogue": "granny_intro"}},
			"cauldron":   {ID: "cauldron", Kind: "cauldron", Props: map[string]any{"name": "Iron Cauldron", "location": "cottage"}},
			"clock":      {ID: "clock", Kind: "puzzle", Props: map[string]any{"name": "Clock", "location": "cottage"}},
			"broom":      {ID: "broom", Kind: "entity", Props: map[string]any{"name": "Broom", "location": "cottage"}},
		},
		Items: map[string]types.ItemDef{
			"moonwater":  {ID: "moonwater", Name: "Moonwater", Icon: "moonwater.png"},
			"silverleaf": {ID: "silverleaf", Name: "Silverleaf", Icon: "silverleaf.png"},
			"draught":    {ID: "draught", Name: "Sleeping Draught", Icon: "draught.png"},
		},
		Recipes: []types.RecipeDef{
			{ID: "sleeping_draught", Requires: []string{"silverleaf", "moonwater"}, Result: "draught"},
		},
		Sources: map[string]types.SourceDef{
			"herb_patch": {ID: "herb_patch", Drop: "silverleaf", Regenerate: 2},
		},
		Clues: map[string]types.ClueDef{
			"letter": {ID: "letter", Name: "Torn Letter", Description: "Half a letter, signed R.", Image: "letter.png", Pages: []string{"letter_back.png"}},
		},
		Dialogues: map[string]types.DialogueDef{
			"granny_intro": {
				ID:      "granny_intro",
				Speaker: "Granny Wick",
				Lines:   []string{"Ah, you came.", "Brew me a draught."},
				Choices: []types.ChoiceDef{
					{Text: "I will.", Effects: []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "promised", "value": true}}}},
					{Text: "Brew it yourself.", Effects: []types.Effect{{Type: "load_scene", Params: map[string]any{"room": "bad_end"}}}},
				},
			},
		},
		Puzzles: map[string]types.PuzzleDef{
			"clock": {ID: "clock", Hour: 15, Minute: 45, Reward: []types.Effect{
				{Type: "open_exit", Params: map[string]any{"room": "cottage", "direction": "down", "target": "cellar"}},
			}},
		},
		Handlers: []types.EventHandler{
			{
				EventType: events.ItemTaken,
				Conditions: []types.Condition{
					{Type: "flag_not", Params: map[string]any{"flag": "first_find"}},
				},
				Effects: []types.Effect{
					{Type: "say", Params: map[string]any{"text": "Your first find!"}},
					{Type: "set_flag", Params: map[string]any{"flag": "first_find", "value": true}},
				},
			},
		},
	}
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func hasEvent(evts []types.Event, typ string) bool {
	for _, ev := range evts {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestIntro(t *testing.T) {
	e := New(testDefs())
	out := e.Intro()
	if len(out) == 0 || !strings.Contains(out[0], "before nightfall") {
		t.Errorf("expected intro first, got %v", out)
	}
	if !outputContains(out, "crooked cottage") {
		t.Errorf("expected starting room, got %v", out)
	}
}

func TestStep_Movement(t *testing.T) {
	e := New(testDefs())

	result := e.Step("go east")
	if !outputContains(result.Output, "can't go that way") || e.State.Player.Location != "cottage" {
		t.Errorf("expected refusal, got %v", result.Output)
	}

	result = e.Step("out")
	if e.State.Player.Location != "garden" {
		t.Errorf("expected player in garden, got %q", e.State.Player.Location)
	}
	if !outputContains(result.Output, "overgrown garden") {
		t.Errorf("expected garden description, got %v", result.Output)
	}
}

func TestStep_Look_DescribesRoom(t *testing.T) {
	e := New(testDefs())
	result := e.Step("look")

	if !outputContains(result.Output, "You see:") || !outputContains(result.Output, "Granny Wick") {
		t.Errorf("expected entity listing, got %v", result.Output)
	}
	if !outputContains(result.Output, "Exits: out.") {
		t.Errorf("expected exits listing, got %v", result.Output)
	}
}

func TestStep_ExamineIsTooltip(t *testing.T) {
	e := New(testDefs())
	result := e.Step("examine moonwater")

	if len(result.Output) != 2 || result.Output[0] != "Moonwater" || result.Output[1] != "Water left out under a full moon." {
		t.Errorf("expected name and description lines, got %v", result.Output)
	}
}

func TestStep_TakeItem(t *testing.T) {
	e := New(testDefs())
	result := e.Step("take moonwater")

	if !state.HasItem(e.State, "moonwater") {
		t.Errorf("expected moonwater in backpack, got %v", e.State.Player.Backpack)
	}
	if !outputContains(result.Output, "You take the Moonwater.") {
		t.Errorf("expected take message, got %v", result.Output)
	}
	if !outputContains(result.Output, "Your first find!") {
		t.Errorf("expected handler output, got %v", result.Output)
	}

	result = e.Step("take broom")
	if !outputContains(result.Output, "can't take that") {
		t.Errorf("scenery should not be takeable, got %v", result.Output)
	}
}

func TestStep_TakeItem_FullBackpack(t *testing.T) {
	e := New(testDefs())
	copy(e.State.Player.Backpack, []string{"a", "b", "c"})

	result := e.Step("take moonwater")
	if !outputContains(result.Output, "backpack is full") {
		t.Errorf("expected full message, got %v", result.Output)
	}
	if outputContains(result.Output, "You take") {
		t.Errorf("should not claim the take, got %v", result.Output)
	}
	if !hasEvent(result.Events, events.InventoryFull) {
		t.Errorf("expected inventory_full event, got %v", result.Events)
	}
	if state.EntityLocation(e.State, e.Defs, "moonwater") != "cottage" {
		t.Error("moonwater should stay in the room")
	}
}

func TestStep_DropItem(t *testing.T) {
	e := New(testDefs())
	e.Step("take moonwater")
	e.Step("out")
	result := e.Step("drop moonwater")

	if state.HasItem(e.State, "moonwater") {
		t.Error("expected moonwater dropped")
	}
	if state.EntityLocation(e.State, e.Defs, "moonwater") != "garden" {
		t.Errorf("expected moonwater in garden")
	}
	if !outputContains(result.Output, "You drop the Moonwater.") {
		t.Errorf("got %v", result.Output)
	}
}

func TestStep_HarvestAndRegrow(t *testing.T) {
	e := New(testDefs())
	e.Step("out")

	result := e.Step("harvest herb patch")
	if !state.HasItem(e.State, "silverleaf") {
		t.Fatalf("expected silverleaf, got %v", e.State.Player.Backpack)
	}
	if !outputContains(result.Output, "You gather some Silverleaf.") {
		t.Errorf("got %v", result.Output)
	}
	if !hasEvent(result.Events, events.SourceHarvested) {
		t.Errorf("expected source_harvested, got %v", result.Events)
	}

	result = e.Step("take herb patch")
	if !outputContains(result.Output, "nothing left to gather") {
		t.Errorf("expected depleted message, got %v", result.Output)
	}

	// Harvested on turn 1 with a two-turn timer.
	if !state.SourceReady(e.State, "herb_patch") {
		t.Error("expected the patch to have regrown after two turns")
	}
	if !hasEvent(result.Events, events.SourceRestored) {
		t.Errorf("expected source_restored at end of turn, got %v", result.Events)
	}
}

func TestStep_CollectAndReadClue(t *testing.T) {
	e := New(testDefs())
	e.Step("out")

	result := e.Step("take letter")
	if !outputContains(result.Output, "You found a clue: Torn Letter.") || !outputContains(result.Output, "signed R.") {
		t.Errorf("expected clue detail view, got %v", result.Output)
	}
	if !e.State.Clues["letter"] || e.State.Player.ClueBoard[0] != "letter" {
		t.Errorf("expected letter on the board, got %v", e.State.Player.ClueBoard)
	}
	if state.EntityLocation(e.State, e.Defs, "letter") != state.Nowhere {
		t.Error("collected clue should leave the scene")
	}

	result = e.Step("clues")
	if !outputContains(result.Output, "Clue board: Torn Letter. (1/2)") {
		t.Errorf("got %v", result.Output)
	}

	result = e.Step("read letter")
	if !outputContains(result.Output, "[letter.png] page 1/2") {
		t.Errorf("expected first page, got %v", result.Output)
	}
	if id, pager := e.Reading(); id != "letter" || pager == nil {
		t.Errorf("expected letter open, got %q", id)
	}

	result = e.Step("next")
	if !outputContains(result.Output, "[letter_back.png] page 2/2 (last page, next to start over)") {
		t.Errorf("expected last page, got %v", result.Output)
	}

	result = e.Step("read letter")
	if !outputContains(result.Output, "[letter.png] page 1/2 (next to turn)") {
		t.Errorf("reading again should start from the first page, got %v", result.Output)
	}
	if _, pager := e.Reading(); pager == nil || pager.Label() != "1/2" {
		t.Error("expected the detail view to stay open on page 1")
	}

	e.Step("look")
	if id, _ := e.Reading(); id != "" {
		t.Error("any other command closes the detail view")
	}

	e.NewGame()
	if len(e.State.Clues) != 0 || e.State.Player.ClueBoard[0] != "" {
		t.Errorf("new game should clear the clue board, got %v", e.State.Player.ClueBoard)
	}
	if state.EntityLocation(e.State, e.Defs, "letter") != "garden" {
		t.Error("new game should put the letter back in the garden")
	}
}

func TestStep_ExamineRegrowingSource(t *testing.T) {
	e := New(testDefs())
	e.Step("out")

	result := e.Step("examine herb patch")
	if outputContains(result.Output, "growing back") {
		t.Errorf("untouched source should not report regrowth, got %v", result.Output)
	}

	e.Step("harvest herb patch")
	result = e.Step("examine herb patch")
	if !outputContains(result.Output, "It is growing back (50%).") {
		t.Errorf("expected half grown, got %v", result.Output)
	}
}

func TestStep_Cauldron(t *testing.T) {
	e := New(testDefs())
	copy(e.State.Player.Backpack, []string{"silverleaf", "moonwater"})

	result := e.Step("use cauldron")
	if !e.State.Cauldron.Open || !outputContains(result.Output, "Iron Cauldron") {
		t.Fatalf("expected cauldron open, got %v", result.Output)
	}

	result = e.Step("brew")
	if !outputContains(result.Output, "cauldron is empty") {
		t.Errorf("expected empty message, got %v", result.Output)
	}

	e.Step("add silverleaf")
	result = e.Step("add silverleaf")
	if !outputContains(result.Output, "You don't have that.") {
		t.Errorf("can't place more than carried, got %v", result.Output)
	}

	e.Step("add moonwater")
	result = e.Step("brew")
	if !outputContains(result.Output, "You bottle the Sleeping Draught.") {
		t.Errorf("expected brew, got %v", result.Output)
	}
	if !state.HasItem(e.State, "draught") {
		t.Errorf("expected draught in backpack, got %v", e.State.Player.Backpack)
	}
	if !state.HasItem(e.State, "silverleaf") {
		t.Error("materials stay unless the recipe consumes them")
	}
	if e.State.Cauldron.Open {
		t.Error("a successful brew closes the cauldron")
	}
	if !hasEvent(result.Events, events.PotionBrewed) {
		t.Errorf("expected potion_brewed, got %v", result.Events)
	}
}

func TestStep_Cauldron_NoRecipe(t *testing.T) {
	e := New(testDefs())
	copy(e.State.Player.Backpack, []string{"moonwater"})

	e.Step("put moonwater in cauldron")
	if e.State.Cauldron.Slots[0] != "moonwater" {
		t.Fatalf("expected moonwater placed, got %v", e.State.Cauldron.Slots)
	}

	result := e.Step("brew")
	if !outputContains(result.Output, "grey sludge") || !hasEvent(result.Events, events.BrewFailed) {
		t.Errorf("expected failed brew, got %v", result.Output)
	}
	if !e.State.Cauldron.Open || len(e.State.Cauldron.Slots) != state.DefaultCauldronSlots || e.State.Cauldron.Slots[0] != "" {
		t.Errorf("failed brew clears the slots and stays open, got %+v", e.State.Cauldron)
	}

	result = e.Step("out")
	if e.State.Cauldron.Open || e.State.Player.Location != "garden" {
		t.Error("walking away closes the cauldron and still moves")
	}
	if !outputContains(result.Output, "step back") {
		t.Errorf("got %v", result.Output)
	}
}

func TestStep_DialogueWithChoice(t *testing.T) {
	e := New(testDefs())

	result := e.Step("talk to granny")
	if !outputContains(result.Output, "Granny Wick: Ah, you came.") {
		t.Fatalf("expected first line, got %v", result.Output)
	}
	if e.Dialogue() == nil || e.State.Dialogue != "granny_intro" {
		t.Fatal("expected active dialogue")
	}
	turn := e.State.TurnCount

	result = e.Step("")
	if !outputContains(result.Output, "Brew me a draught.") || e.State.DialogLine != 1 {
		t.Errorf("expected second line, got %v (line %d)", result.Output, e.State.DialogLine)
	}

	result = e.Step("next")
	if !outputContains(result.Output, "1) I will.") || !outputContains(result.Output, "2) Brew it yourself.") {
		t.Errorf("expected numbered choices, got %v", result.Output)
	}

	result = e.Step("3")
	if !outputContains(result.Output, "Choose an answer (1-2).") {
		t.Errorf("expected prompt, got %v", result.Output)
	}

	result = e.Step("1")
	if !e.State.Flags["promised"] {
		t.Error("expected choice effects applied")
	}
	if e.Dialogue() != nil || e.State.Dialogue != "" {
		t.Error("expected dialogue finished")
	}
	if !hasEvent(result.Events, events.DialogueEnded) {
		t.Errorf("expected dialogue_ended, got %v", result.Events)
	}
	if e.State.TurnCount != turn {
		t.Errorf("dialogue input should not advance the clock: %d -> %d", turn, e.State.TurnCount)
	}
}

func TestStep_TakeItemWithoutIcon(t *testing.T) {
	defs := testDefs()
	defs.Items["moonwater"] = types.ItemDef{ID: "moonwater", Name: "Moonwater"}
	e := New(defs)

	result := e.Step("take moonwater")
	if !outputContains(result.Output, "You can't carry that.") {
		t.Errorf("expected refusal, got %v", result.Output)
	}
	if state.HasItem(e.State, "moonwater") {
		t.Error("item without an icon should stay in the room")
	}
}

func TestStep_ChoiceOutsideDialogue(t *testing.T) {
	e := New(testDefs())

	result := e.Step("2")
	if !outputContains(result.Output, "There is nothing to answer right now.") {
		t.Errorf("got %v", result.Output)
	}
	if e.State.TurnCount != 0 {
		t.Errorf("answering nobody should not use a turn, turn %d", e.State.TurnCount)
	}
}

func TestStep_ChoiceEchoesAnswer(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"1", "> I will."},
		{"2", "> Brew it yourself."},
	} {
		e := New(testDefs())
		e.Step("talk to granny")
		e.Step("next")
		e.Step("next")

		result := e.Step(tc.input)
		if !outputContains(result.Output, tc.want) {
			t.Errorf("choice %s: expected %q, got %v", tc.input, tc.want, result.Output)
		}
		if e.Dialogue() != nil {
			t.Errorf("choice %s: expected dialogue finished", tc.input)
		}
	}
}

func TestStep_DialogueBadEnding(t *testing.T) {
	e := New(testDefs())
	e.Step("talk to granny")
	e.Step("next")
	e.Step("next")
	e.Step("2")

	if !e.State.Flags["game_over"] || e.State.Player.Location != "bad_end" {
		t.Fatalf("expected bad ending, at %q", e.State.Player.Location)
	}
	result := e.Step("look")
	if !outputContains(result.Output, "story is over") {
		t.Errorf("expected game over message, got %v", result.Output)
	}
}

func TestTickAndContinue(t *testing.T) {
	e := New(testDefs(), WithTypingSpeed(10*time.Millisecond))
	e.Step("talk to granny")
	d := e.Dialogue()

	if changed, _ := tick(e, 30*time.Millisecond); !changed || d.Text() != "Ah," {
		t.Errorf("expected three runes, got %q", d.Text())
	}
	e.Continue()
	if d.Phase() != dialogue.Waiting || d.Text() != "Ah, you came." {
		t.Errorf("continue while typing reveals the line, got %s %q", d.Phase(), d.Text())
	}
	e.Continue()
	if d.Index() != 1 || d.Phase() != dialogue.Typing {
		t.Errorf("continue while waiting advances, got %d %s", d.Index(), d.Phase())
	}
}

func tick(e *Engine, d time.Duration) (bool, types.Result) {
	r, changed := e.Tick(d)
	return changed, r
}

func TestStep_ClockPuzzle(t *testing.T) {
	e := New(testDefs())

	result := e.Step("set clock to 9:00")
	if !outputContains(result.Output, "nothing happens") {
		t.Errorf("got %v", result.Output)
	}
	result = e.Step("set clock to noon")
	if !outputContains(result.Output, "Try something like 3:45") {
		t.Errorf("got %v", result.Output)
	}

	result = e.Step("set clock 3 45")
	if !outputContains(result.Output, "nothing happens") || e.State.Puzzles["clock"] {
		t.Errorf("3:45 should not open a lock set for 15:45, got %v", result.Output)
	}

	result = e.Step("set clock 15 45")
	if !e.State.Puzzles["clock"] || !hasEvent(result.Events, events.PuzzleSolved) {
		t.Fatalf("expected solved, got %v", result.Output)
	}
	if state.RoomExits(e.State, e.Defs, "cottage")["down"] != "cellar" {
		t.Error("expected reward to open the cellar")
	}
	result = e.Step("set clock to 15:45")
	if !outputContains(result.Output, "already clicked open") {
		t.Errorf("got %v", result.Output)
	}
}

func TestStep_RuleOverrideReportsRule(t *testing.T) {
	e := New(testDefs())
	result := e.Step("smell moonwater")

	if !outputContains(result.Output, "smells of rain") {
		t.Errorf("expected rule text, got %v", result.Output)
	}
	if result.Rule != "cottage_smell_moonwater" {
		t.Errorf("expected rule id, got %q", result.Rule)
	}
}

func TestStep_UnknownAndScenery(t *testing.T) {
	e := New(testDefs())

	result := e.Step("examine thatch")
	if !outputContains(result.Output, "nothing special about the thatch") {
		t.Errorf("expected scenery fallback, got %v", result.Output)
	}
	result = e.Step("take dragon")
	if !outputContains(result.Output, `You don't see "dragon" here.`) {
		t.Errorf("expected not found, got %v", result.Output)
	}
	result = e.Step("")
	if !outputContains(result.Output, "What do you want to do?") {
		t.Errorf("got %v", result.Output)
	}
}

func TestStep_TurnsAndCommandLog(t *testing.T) {
	e := New(testDefs())
	e.Step("look")
	e.Step("out")

	if e.State.TurnCount != 2 {
		t.Errorf("expected turn 2, got %d", e.State.TurnCount)
	}
	if len(e.State.CommandLog) != 2 || e.State.CommandLog[1] != "out" {
		t.Errorf("unexpected log %v", e.State.CommandLog)
	}
}

func TestRestore_ResumesDialogue(t *testing.T) {
	e := New(testDefs())
	e.Step("talk to granny")
	e.Step("next")

	data, err := save.Save(e.State, e.Defs)
	if err != nil {
		t.Fatal(err)
	}
	sd, err := save.Load(data)
	if err != nil {
		t.Fatal(err)
	}

	e2 := New(testDefs())
	if err := e2.Restore(sd); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	d := e2.Dialogue()
	if d == nil || d.Index() != 1 || d.Text() != "Brew me a draught." {
		t.Fatalf("expected dialogue resumed at line 1, got %+v", d)
	}
	result := e2.Step("next")
	if !outputContains(result.Output, "1) I will.") {
		t.Errorf("expected choices after resume, got %v", result.Output)
	}
}

func TestNewGame_ResetsSession(t *testing.T) {
	e := New(testDefs())
	first := e.State.SessionID
	e.Step("out")
	e.Step("take letter")

	e.NewGame()
	if e.State.SessionID == first {
		t.Error("expected a new session id")
	}
	if e.State.Clues["letter"] || e.State.Player.Location != "cottage" {
		t.Error("expected clues and location reset")
	}
}
