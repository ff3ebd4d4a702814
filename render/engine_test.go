package render

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lixenwraith/framediff/frame"
	"github.com/lixenwraith/framediff/terminal"
)

var testOpts = Options{Width: 12, Height: 6, Foreground: frame.White, Background: frame.Black}

func newTestEngine(t *testing.T) (*Engine, *terminal.Recorder) {
	t.Helper()
	rec := terminal.NewRecorder(80, 24)
	e, err := New(rec, testOpts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rec.ResetWrites()
	return e, rec
}

// randomFrame fills a frame from a small alphabet so neighbouring frames share cells
func randomFrame(rng *rand.Rand, w, h int) *frame.Frame {
	runes := []rune(" .#@")
	colors := []frame.RGB{frame.White, frame.Red, frame.Black, frame.Blue}
	f := frame.New(w, h, frame.Cell{})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(frame.Pt(x, y), frame.Cell{
				Rune: runes[rng.Intn(len(runes))],
				Fg:   colors[rng.Intn(len(colors))],
				Bg:   colors[rng.Intn(2)+2],
			})
		}
	}
	return f
}

func TestNewEngineSetup(t *testing.T) {
	rec := terminal.NewRecorder(80, 24)
	e, err := New(rec, testOpts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	w, h := rec.Size()
	if w != testOpts.Width || h != testOpts.Height+1 {
		t.Errorf("Expected window %dx%d, got %dx%d", testOpts.Width, testOpts.Height+1, w, h)
	}

	x, y, visible := rec.Cursor()
	if visible {
		t.Error("Expected cursor hidden after setup")
	}
	if x != 0 || y != testOpts.Height {
		t.Errorf("Expected cursor parked at (0,%d), got (%d,%d)", testOpts.Height, x, y)
	}

	if rec.Writes() != 0 {
		t.Errorf("Expected no character writes during setup, got %d", rec.Writes())
	}

	if !e.Last().Equal(e.Blank()) {
		t.Error("Expected retained frame to start blank")
	}
	if !rec.Region(e.Width(), e.Height()).Equal(e.Blank()) {
		t.Error("Expected screen cleared to default colors")
	}
}

func TestNewEngineInvalidSize(t *testing.T) {
	for _, opts := range []Options{{Width: 0, Height: 5}, {Width: 5, Height: -1}} {
		if _, err := New(terminal.NewRecorder(80, 24), opts); err == nil {
			t.Errorf("Expected error for size %dx%d", opts.Width, opts.Height)
		}
	}
}

func TestWriteCellAtBounds(t *testing.T) {
	e, rec := newTestEngine(t)
	c := frame.Cell{Rune: 'X', Fg: frame.Yellow, Bg: frame.DarkBlue}

	tests := []struct {
		name string
		p    frame.Point
		ok   bool
	}{
		{"last cell", frame.Pt(testOpts.Width-1, testOpts.Height-1), true},
		{"origin", frame.Pt(0, 0), true},
		{"x equals width", frame.Pt(testOpts.Width, 0), false},
		{"y equals height", frame.Pt(0, testOpts.Height), false},
		{"negative", frame.Pt(-1, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rec.Writes()
			err := e.WriteCellAt(c, tt.p)
			if !tt.ok {
				if !errors.Is(err, frame.ErrOutOfBounds) {
					t.Fatalf("Expected ErrOutOfBounds, got %v", err)
				}
				if rec.Writes() != before {
					t.Error("Expected no write for rejected position")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected write to succeed, got %v", err)
			}
			if got := rec.Region(testOpts.Width, testOpts.Height).At(tt.p.X, tt.p.Y); got != c {
				t.Errorf("Expected %+v on screen, got %+v", c, got)
			}
		})
	}
}

func TestWriteCellAtParksAndResets(t *testing.T) {
	e, rec := newTestEngine(t)
	p := frame.Pt(3, 2)
	c := frame.Cell{Rune: '*', Fg: frame.Green, Bg: frame.DarkRed}

	if err := e.WriteCellAt(c, p); err != nil {
		t.Fatalf("WriteCellAt failed: %v", err)
	}

	want := []terminal.Op{
		{Kind: terminal.OpCursor, X: 3, Y: 2},
		{Kind: terminal.OpForeground, Color: frame.Green},
		{Kind: terminal.OpBackground, Color: frame.DarkRed},
		{Kind: terminal.OpWrite, X: 3, Y: 2, Rune: '*', Color: frame.Green},
		{Kind: terminal.OpCursor, X: 0, Y: testOpts.Height},
		{Kind: terminal.OpForeground, Color: frame.White},
		{Kind: terminal.OpBackground, Color: frame.Black},
		{Kind: terminal.OpFlush},
	}
	if diff := cmp.Diff(want, rec.Ops()); diff != "" {
		t.Errorf("Op sequence mismatch (-want +got):\n%s", diff)
	}

	if !e.Last().Equal(e.Blank()) {
		t.Error("Expected WriteCellAt to leave the retained frame untouched")
	}
}

func TestDiffCorrectness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		e, _ := newTestEngine(t)
		a := randomFrame(rng, testOpts.Width, testOpts.Height)
		b := randomFrame(rng, testOpts.Width, testOpts.Height)

		if err := e.RenderIncremental(a); err != nil {
			t.Fatalf("RenderIncremental(a) failed: %v", err)
		}

		var want []frame.Point
		for y := 0; y < b.Height(); y++ {
			for x := 0; x < b.Width(); x++ {
				ca, _ := a.Get(frame.Pt(x, y))
				cb, _ := b.Get(frame.Pt(x, y))
				if ca != cb {
					want = append(want, frame.Pt(x, y))
				}
			}
		}

		got, err := e.Diff(b)
		if err != nil {
			t.Fatalf("Diff failed: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Change set mismatch on iteration %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestChangeSetRowMajor(t *testing.T) {
	prev := frame.New(3, 2, frame.Blank(frame.White, frame.Black))
	next := prev.Clone()
	next.Set(frame.Pt(0, 1), frame.Cell{Rune: 'a'})
	next.Set(frame.Pt(2, 0), frame.Cell{Rune: 'b'})
	next.Set(frame.Pt(1, 0), frame.Cell{Rune: 'c'})

	want := []frame.Point{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}}
	if diff := cmp.Diff(want, ChangeSet(prev, next)); diff != "" {
		t.Errorf("Change set order mismatch (-want +got):\n%s", diff)
	}

	if got := ChangeSet(prev, prev.Clone()); len(got) != 0 {
		t.Errorf("Expected empty change set for identical frames, got %v", got)
	}
}

func TestChangeSetPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for mismatched frame sizes")
		}
	}()
	ChangeSet(frame.New(2, 2, frame.Cell{}), frame.New(3, 2, frame.Cell{}))
}

func TestRenderIncrementalWritesExactlyChanges(t *testing.T) {
	e, rec := newTestEngine(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		next := randomFrame(rng, testOpts.Width, testOpts.Height)
		changes, err := e.Diff(next)
		if err != nil {
			t.Fatalf("Diff failed: %v", err)
		}

		rec.ResetWrites()
		if err := e.RenderIncremental(next); err != nil {
			t.Fatalf("RenderIncremental failed: %v", err)
		}

		if rec.Writes() != len(changes) {
			t.Errorf("Expected %d writes, got %d", len(changes), rec.Writes())
		}
		if e.Stats().LastWrites != len(changes) {
			t.Errorf("Expected LastWrites %d, got %d", len(changes), e.Stats().LastWrites)
		}
		if !e.Last().Equal(next) {
			t.Fatal("Expected retained frame to converge to the rendered frame")
		}
		if !rec.Region(testOpts.Width, testOpts.Height).Equal(next) {
			t.Fatal("Expected screen content to match the rendered frame")
		}
	}
}

func TestRenderIncrementalWriteOrder(t *testing.T) {
	e, rec := newTestEngine(t)
	next := e.Blank()
	next.Set(frame.Pt(5, 4), frame.Cell{Rune: 'z', Fg: frame.White, Bg: frame.Black})
	next.Set(frame.Pt(1, 0), frame.Cell{Rune: 'a', Fg: frame.White, Bg: frame.Black})
	next.Set(frame.Pt(0, 3), frame.Cell{Rune: 'm', Fg: frame.White, Bg: frame.Black})

	if err := e.RenderIncremental(next); err != nil {
		t.Fatalf("RenderIncremental failed: %v", err)
	}

	var got []rune
	for _, op := range rec.Ops() {
		if op.Kind == terminal.OpWrite {
			got = append(got, op.Rune)
		}
	}
	if diff := cmp.Diff([]rune("amz"), got); diff != "" {
		t.Errorf("Write order mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderIncrementalIdempotent(t *testing.T) {
	e, rec := newTestEngine(t)
	f := randomFrame(rand.New(rand.NewSource(3)), testOpts.Width, testOpts.Height)

	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("First render failed: %v", err)
	}
	rec.ResetWrites()
	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("Second render failed: %v", err)
	}
	if rec.Writes() != 0 {
		t.Errorf("Expected zero writes on repeated render, got %d", rec.Writes())
	}
}

func TestRenderIncrementalSnapshotIsIndependent(t *testing.T) {
	e, rec := newTestEngine(t)
	f := e.Blank()
	f.Set(frame.Pt(0, 0), frame.Cell{Rune: 'A', Fg: frame.White, Bg: frame.Black})

	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("RenderIncremental failed: %v", err)
	}

	// Caller reuses its frame for the next tick
	f.Set(frame.Pt(0, 0), frame.Cell{Rune: 'B', Fg: frame.White, Bg: frame.Black})
	rec.ResetWrites()
	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("RenderIncremental failed: %v", err)
	}
	if rec.Writes() != 1 {
		t.Errorf("Expected the mutated cell to be written once, got %d writes", rec.Writes())
	}
}

func TestRenderFullVsIncrementalEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	frames := make([]*frame.Frame, 6)
	for i := range frames {
		frames[i] = randomFrame(rng, testOpts.Width, testOpts.Height)
	}
	lastFrame := frames[len(frames)-1]

	incEngine, incRec := newTestEngine(t)
	fullEngine, fullRec := newTestEngine(t)

	for _, f := range frames[:len(frames)-1] {
		if err := incEngine.RenderIncremental(f); err != nil {
			t.Fatal(err)
		}
		if err := fullEngine.RenderIncremental(f); err != nil {
			t.Fatal(err)
		}
	}

	incRec.ResetWrites()
	fullRec.ResetWrites()
	if err := incEngine.RenderIncremental(lastFrame); err != nil {
		t.Fatal(err)
	}
	if err := fullEngine.RenderFull(lastFrame); err != nil {
		t.Fatal(err)
	}

	incScreen := incRec.Region(testOpts.Width, testOpts.Height)
	fullScreen := fullRec.Region(testOpts.Width, testOpts.Height)
	if !incScreen.Equal(fullScreen) {
		t.Errorf("Expected identical visible content:\nincremental:\n%s\nfull:\n%s", incScreen, fullScreen)
	}
	if !incEngine.Last().Equal(fullEngine.Last()) {
		t.Error("Expected identical retained frames")
	}

	if fullRec.Writes() != testOpts.Width*testOpts.Height {
		t.Errorf("Expected full render to write %d cells, got %d", testOpts.Width*testOpts.Height, fullRec.Writes())
	}
	if incRec.Writes() >= fullRec.Writes() {
		t.Errorf("Expected incremental render (%d writes) to write fewer cells than full (%d)", incRec.Writes(), fullRec.Writes())
	}
}

func TestRenderSmallerFrameIsPadded(t *testing.T) {
	e, rec := newTestEngine(t)
	small := frame.New(3, 2, frame.Cell{Rune: '#', Fg: frame.Red, Bg: frame.Black})

	if err := e.RenderIncremental(small); err != nil {
		t.Fatalf("RenderIncremental failed: %v", err)
	}
	if rec.Writes() != 6 {
		t.Errorf("Expected 6 writes for the 3x2 region, got %d", rec.Writes())
	}

	want, _ := small.Pad(testOpts.Width, testOpts.Height, frame.Blank(frame.White, frame.Black))
	if !e.Last().Equal(want) {
		t.Error("Expected retained frame to equal the padded frame")
	}
}

func TestRenderOversizedFrame(t *testing.T) {
	e, rec := newTestEngine(t)

	for _, f := range []*frame.Frame{
		frame.New(testOpts.Width+1, testOpts.Height, frame.Cell{Rune: 'x'}),
		frame.New(testOpts.Width, testOpts.Height+1, frame.Cell{Rune: 'x'}),
	} {
		if err := e.RenderIncremental(f); !errors.Is(err, frame.ErrOutOfBounds) {
			t.Errorf("Expected ErrOutOfBounds from RenderIncremental, got %v", err)
		}
		if err := e.RenderFull(f); !errors.Is(err, frame.ErrOutOfBounds) {
			t.Errorf("Expected ErrOutOfBounds from RenderFull, got %v", err)
		}
		if _, err := e.Diff(f); !errors.Is(err, frame.ErrOutOfBounds) {
			t.Errorf("Expected ErrOutOfBounds from Diff, got %v", err)
		}
	}
	if rec.Writes() != 0 {
		t.Errorf("Expected no writes for rejected frames, got %d", rec.Writes())
	}
}

func TestRenderFailureLeavesBaseline(t *testing.T) {
	e, rec := newTestEngine(t)
	base := e.Blank()

	next := e.Blank()
	next.DrawString(frame.Pt(0, 0), "hello", frame.Green, frame.Black)

	boom := errors.New("tty gone")
	rec.FailWrites(boom)
	if err := e.RenderIncremental(next); !errors.Is(err, boom) {
		t.Fatalf("Expected driver error, got %v", err)
	}
	if !e.Last().Equal(base) {
		t.Error("Expected retained frame unchanged after failed render")
	}

	rec.FailWrites(nil)
	rec.ResetWrites()
	if err := e.RenderIncremental(next); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if rec.Writes() != 5 {
		t.Errorf("Expected retry to recompute 5 writes, got %d", rec.Writes())
	}
}

func TestRenderFlushFailure(t *testing.T) {
	e, rec := newTestEngine(t)
	next := e.Blank()

	boom := errors.New("flush failed")
	rec.FailWrites(boom)
	// No cell differs, only the flush reaches the driver
	if err := e.RenderIncremental(next); !errors.Is(err, boom) {
		t.Fatalf("Expected flush error, got %v", err)
	}
	if e.Stats().Renders != 0 {
		t.Errorf("Expected failed render not counted, got %d", e.Stats().Renders)
	}
}

func TestInvalidateForcesFullRender(t *testing.T) {
	e, rec := newTestEngine(t)
	f := e.Blank()

	e.Invalidate()
	pending, err := e.Diff(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != testOpts.Width*testOpts.Height {
		t.Errorf("Expected Diff to report every cell after Invalidate, got %d", len(pending))
	}
	if pending[0] != frame.Pt(0, 0) || pending[len(pending)-1] != frame.Pt(testOpts.Width-1, testOpts.Height-1) {
		t.Errorf("Expected row-major positions, got first %v last %v", pending[0], pending[len(pending)-1])
	}

	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("RenderIncremental failed: %v", err)
	}
	if rec.Writes() != testOpts.Width*testOpts.Height {
		t.Errorf("Expected full rewrite after Invalidate, got %d writes", rec.Writes())
	}

	rec.ResetWrites()
	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("RenderIncremental failed: %v", err)
	}
	if rec.Writes() != 0 {
		t.Errorf("Expected incremental behaviour to resume, got %d writes", rec.Writes())
	}
	if pending, _ := e.Diff(f); len(pending) != 0 {
		t.Errorf("Expected empty Diff once rendered, got %v", pending)
	}

	s := e.Stats()
	if s.FullRenders != 1 || s.Renders != 1 {
		t.Errorf("Expected 1 full and 1 incremental render, got %+v", s)
	}
}

func TestLoadFrameRaggedFile(t *testing.T) {
	e, _ := newTestEngine(t)
	src := "row0\nrow1\nrow2\n"

	f, err := e.LoadFrame(strings.NewReader(src), frame.Pt(4, 5))
	if err != nil {
		t.Fatalf("LoadFrame failed: %v", err)
	}
	if f.Height() != 5 {
		t.Fatalf("Expected 5 rows, got %d", f.Height())
	}
	blank := frame.Blank(testOpts.Foreground, testOpts.Background)
	for y := 3; y < 5; y++ {
		for x := 0; x < 4; x++ {
			if got := f.At(x, y); got != blank {
				t.Errorf("Expected blank default cell at (%d,%d), got %+v", x, y, got)
			}
		}
	}

	if err := e.RenderIncremental(f); err != nil {
		t.Fatalf("Rendering loaded frame failed: %v", err)
	}
}

func TestWaitForKey(t *testing.T) {
	e, rec := newTestEngine(t)
	rec.QueueKeys(terminal.KeyEvent{Key: terminal.KeyRune, Rune: 'q'})

	ev, err := e.WaitForKey()
	if err != nil {
		t.Fatalf("WaitForKey failed: %v", err)
	}
	if ev.Key != terminal.KeyRune || ev.Rune != 'q' {
		t.Errorf("Expected 'q', got %+v", ev)
	}

	x, y, _ := rec.Cursor()
	if x != 0 || y != testOpts.Height {
		t.Errorf("Expected cursor re-parked at (0,%d), got (%d,%d)", testOpts.Height, x, y)
	}

	if _, err := e.WaitForKey(); err == nil {
		t.Error("Expected error once input is exhausted")
	}
}

func TestClose(t *testing.T) {
	e, rec := newTestEngine(t)

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	w, h := rec.Size()
	if w != 80 || h != 24 {
		t.Errorf("Expected window restored to 80x24, got %dx%d", w, h)
	}
	if _, _, visible := rec.Cursor(); !visible {
		t.Error("Expected cursor visible after Close")
	}

	if err := e.RenderIncremental(e.Blank()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := e.WriteCellAt(frame.Cell{Rune: 'x'}, frame.Pt(0, 0)); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from WriteCellAt, got %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got %v", err)
	}
}
