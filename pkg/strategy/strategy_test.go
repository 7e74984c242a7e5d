package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/recorder"
	"github.com/menta2k/image-fitter/pkg/types"
)

func openDoc(t *testing.T, r *recorder.Recorder, name string, w, h int) (context.Context, editor.Document) {
	t.Helper()
	r.Sizes[name] = types.Dimensions{Width: w, Height: h}
	ctx := context.Background()
	doc, err := r.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return ctx, doc
}

func TestLetterboxPlan(t *testing.T) {
	s := Letterbox{Background: types.White}
	plan, err := s.Plan(types.Dimensions{Width: 800, Height: 600}, types.Dimensions{Width: 1600, Height: 2400})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	want := "Resize(1600x1200) -> ResizeCanvas(1600x2400, center) -> FillBackground(#FFFFFF)"
	if plan.String() != want {
		t.Errorf("Expected plan %q, got %q", want, plan.String())
	}
	if plan.ContentRect != (types.Rect{X: 0, Y: 600, Width: 1600, Height: 1200}) {
		t.Errorf("Unexpected content rect %+v", plan.ContentRect)
	}
}

func TestLetterboxExecute(t *testing.T) {
	r := recorder.New()
	ctx, doc := openDoc(t, r, "a.jpg", 800, 600)
	plan, _ := Letterbox{Background: types.RGBColor{R: 10}}.Plan(doc.Size(), types.Dimensions{Width: 1600, Height: 2400})

	res, err := plan.Execute(ctx, r, doc)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Degraded {
		t.Error("Letterbox should never be degraded")
	}
	if doc.Size() != (types.Dimensions{Width: 1600, Height: 2400}) {
		t.Errorf("Expected final canvas 1600x2400, got %s", doc.Size())
	}
	layers := recorder.Layers(doc)
	if len(layers) != 2 {
		t.Fatalf("Expected background + content layers, got %d", len(layers))
	}
	if layers[0] != (types.Rect{Width: 1600, Height: 2400}) {
		t.Errorf("Background layer should cover the canvas, got %+v", layers[0])
	}
	if layers[1] != plan.ContentRect {
		t.Errorf("Content layer %+v should match plan content rect %+v", layers[1], plan.ContentRect)
	}
}

func TestCropPlan(t *testing.T) {
	plan, err := Crop{PrimaryAxis: types.AxisWidth}.Plan(types.Dimensions{Width: 1000, Height: 500}, types.Dimensions{Width: 1080, Height: 1080})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	want := "Resize(2160x1080) -> Crop[540,0,1620,1080]"
	if plan.String() != want {
		t.Errorf("Expected plan %q, got %q", want, plan.String())
	}
	if plan.ContentRect != (types.Rect{Width: 1080, Height: 1080}) {
		t.Errorf("Crop content rect should be the full canvas, got %+v", plan.ContentRect)
	}

	same, _ := Crop{PrimaryAxis: types.AxisHeight}.Plan(types.Dimensions{Width: 500, Height: 500}, types.Dimensions{Width: 1000, Height: 1000})
	if len(same.Steps) != 1 {
		t.Errorf("Matching aspect ratio should need no crop step, got %s", same)
	}
}

func TestCropExecuteFillsCanvas(t *testing.T) {
	for _, axis := range []types.Axis{types.AxisWidth, types.AxisHeight} {
		r := recorder.New()
		ctx, doc := openDoc(t, r, "c.png", 333, 1000)
		plan, _ := Crop{PrimaryAxis: axis}.Plan(doc.Size(), types.Dimensions{Width: 1080, Height: 1350})
		if _, err := plan.Execute(ctx, r, doc); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if doc.Size() != (types.Dimensions{Width: 1080, Height: 1350}) {
			t.Errorf("%s primary: expected 1080x1350, got %s", axis, doc.Size())
		}
		l := recorder.Layers(doc)[0]
		if l.Left() > 0 || l.Top() > 0 || l.Right() < 1080 || l.Bottom() < 1350 {
			t.Errorf("%s primary: content %+v leaves a gap in the canvas", axis, l)
		}
	}
}

func TestOutpaintDegraded(t *testing.T) {
	r := recorder.New()
	r.OutpaintSupported = false
	ctx, doc := openDoc(t, r, "o.tif", 800, 600)
	plan, _ := Outpaint{}.Plan(doc.Size(), types.Dimensions{Width: 1000, Height: 1000})

	res, err := plan.Execute(ctx, r, doc)
	if err != nil {
		t.Fatalf("Unsupported outpaint should not fail the plan: %v", err)
	}
	if !res.Degraded || res.Warning == "" {
		t.Errorf("Expected degraded result with a warning, got %+v", res)
	}
	if doc.Size() != (types.Dimensions{Width: 1000, Height: 1000}) {
		t.Errorf("Degraded outpaint should still leave the target canvas, got %s", doc.Size())
	}
	if plan.ContentRect != (types.Rect{Width: 1000, Height: 1000}) {
		t.Errorf("Outpaint content rect should be the full canvas, got %+v", plan.ContentRect)
	}
}

func TestExecuteStopsOnFailure(t *testing.T) {
	r := recorder.New()
	boom := errors.New("boom")
	r.Fail["f.jpg:resize_canvas"] = boom
	ctx, doc := openDoc(t, r, "f.jpg", 10, 20)
	plan, _ := Letterbox{}.Plan(doc.Size(), types.Dimensions{Width: 20, Height: 20})

	if _, err := plan.Execute(ctx, r, doc); !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped boom error, got %v", err)
	}
	for _, c := range r.Calls() {
		if c.Op == "fill" {
			t.Error("Steps after a failure must not run")
		}
	}
}

func TestNew(t *testing.T) {
	for _, m := range []types.FillMethod{types.FillLetterbox, types.FillCrop, types.FillOutpaint} {
		s, err := New(m, Options{})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", m, err)
		}
		if s.Method() != m {
			t.Errorf("New(%s) returned %s strategy", m, s.Method())
		}
	}
	if _, err := New("stretch", Options{}); err == nil {
		t.Error("Expected error for unknown method")
	}
	if _, err := (Letterbox{}).Plan(types.Dimensions{}, types.Dimensions{Width: 1, Height: 1}); err == nil {
		t.Error("Expected error for empty source size")
	}
}
