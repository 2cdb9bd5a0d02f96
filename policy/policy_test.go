package policy

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/intercede/object"
	"github.com/chazu/intercede/proxy"
	"github.com/chazu/intercede/reflection"
)

func student() *object.Object {
	return object.New(nil).
		Put("name", "zhangsan").
		Put("grade", "一年级").
		Put("subject", "语文").
		Put("_score", 95)
}

func mustWrap(t *testing.T, target object.Target, opts Options) *proxy.Proxy {
	t.Helper()
	p, err := Wrap(target, opts)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// Handler selection
// ---------------------------------------------------------------------------

func TestHandlersOnlyForCoveredKinds(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []proxy.Kind
	}{
		{"empty", Options{}, nil},
		{"trace", Options{Trace: true}, []proxy.Kind{proxy.KindGet, proxy.KindSet}},
		{"range", Options{Rules: []Rule{Range("_score", 0, 150)}}, []proxy.Kind{proxy.KindSet}},
		{"private", Options{Rules: []Rule{PrivatePrefix("_")}},
			[]proxy.Kind{proxy.KindGet, proxy.KindSet, proxy.KindDeleteField}},
		{"hidden", Options{Hidden: []string{"secret"}},
			[]proxy.Kind{proxy.KindGet, proxy.KindSet, proxy.KindHas}},
		{"deny construct", Options{Rules: []Rule{Deny(proxy.KindConstruct)}}, []proxy.Kind{proxy.KindConstruct}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Handlers(tt.opts)
			if diff := cmp.Diff(tt.want, h.Kinds()); diff != "" {
				t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

func TestPrivatePrefix(t *testing.T) {
	p := mustWrap(t, student(), Options{Rules: []Rule{PrivatePrefix("_")}})

	if v, err := reflection.Get(p, "name"); err != nil || v != "zhangsan" {
		t.Errorf("name = %v, %v", v, err)
	}
	if _, err := reflection.Get(p, "_score"); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("get _score: err = %v, want ErrPolicyRejected", err)
	}
	if _, err := reflection.Set(p, "_score", 1); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("set _score: err = %v", err)
	}
	if _, err := reflection.DeleteField(p, "_score"); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("delete _score: err = %v", err)
	}
}

func TestRangeRejectsBeforeMutation(t *testing.T) {
	target := student()
	p := mustWrap(t, target, Options{Rules: []Rule{AtMost("_score", 150)}})

	_, err := reflection.Set(p, "_score", 180)
	var pe *object.PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PolicyError", err)
	}
	if pe.Action != "set" || pe.Key != "_score" {
		t.Errorf("PolicyError = %+v", pe)
	}
	if v, _ := reflection.Get(target, "_score"); v != 95 {
		t.Errorf("_score = %v, want 95 unchanged", v)
	}

	if ok, err := reflection.Set(p, "_score", 140); err != nil || !ok {
		t.Fatalf("Set(140) = %v, %v", ok, err)
	}
	if v, _ := reflection.Get(target, "_score"); v != 140 {
		t.Errorf("_score = %v, want 140", v)
	}
}

func TestRangeBounds(t *testing.T) {
	r := Range("age", 0, 120)
	tests := []struct {
		value object.Value
		ok    bool
	}{
		{0, true},
		{120, true},
		{60.5, true},
		{-1, false},
		{121, false},
		{"old", false},
	}
	for _, tt := range tests {
		err := r.Check(Action{Kind: proxy.KindSet, Key: "age", Value: tt.value})
		if (err == nil) != tt.ok {
			t.Errorf("Check(%v) = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
	if err := r.Check(Action{Kind: proxy.KindSet, Key: "other", Value: "x"}); err != nil {
		t.Errorf("other keys should pass, got %v", err)
	}
}

func TestReadOnly(t *testing.T) {
	target := object.New(nil).Put("id", 1).Put("name", "a")
	p := mustWrap(t, target, Options{Rules: []Rule{ReadOnly("id")}})

	if _, err := reflection.Set(p, "id", 2); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("set id: err = %v", err)
	}
	if _, err := reflection.DeleteField(p, "id"); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("delete id: err = %v", err)
	}
	if ok, err := reflection.Set(p, "name", "b"); err != nil || !ok {
		t.Errorf("set name = %v, %v", ok, err)
	}
}

func TestDeny(t *testing.T) {
	cls := object.NewClass("Student", nil)
	p := mustWrap(t, cls, Options{Rules: []Rule{Deny(proxy.KindConstruct, proxy.KindSetPrototype)}})

	if _, err := reflection.Construct(p, nil); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("construct: err = %v", err)
	}
	if _, err := reflection.SetPrototype(p, nil); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("setPrototype: err = %v", err)
	}
	if has, err := reflection.Has(p, "prototype"); err != nil || !has {
		t.Errorf("has should stay transparent, got %v, %v", has, err)
	}
}

func TestWrapDropsUnusableHandlers(t *testing.T) {
	p := mustWrap(t, student(), Options{Rules: []Rule{Deny(proxy.KindApply)}})
	if _, err := reflection.Apply(p, nil, nil); !errors.Is(err, object.ErrNotCallable) {
		t.Errorf("err = %v, want ErrNotCallable", err)
	}
}

func TestRulesRunInOrder(t *testing.T) {
	first := errors.New("first")
	var calls []string
	rules := []Rule{
		RuleFunc(func(Action) error { calls = append(calls, "a"); return first }, proxy.KindSet),
		RuleFunc(func(Action) error { calls = append(calls, "b"); return nil }, proxy.KindSet),
	}
	p := mustWrap(t, student(), Options{Rules: rules})
	if _, err := reflection.Set(p, "name", "x"); err != first {
		t.Errorf("err = %v, want first", err)
	}
	if diff := cmp.Diff([]string{"a"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Hidden keys and aliases
// ---------------------------------------------------------------------------

func TestHidden(t *testing.T) {
	target := student().Put("secret", "xyz")
	p := mustWrap(t, target, Options{Hidden: []string{"secret"}})

	if has, _ := reflection.Has(p, "secret"); has {
		t.Error("hidden key should not be reported by has")
	}
	if v, _ := reflection.Get(p, "secret"); !object.IsUndefined(v) {
		t.Errorf("secret = %v, want undefined", v)
	}
	if has, _ := reflection.Has(target, "secret"); !has {
		t.Error("target still holds the key")
	}
}

func TestAliasRedirectsToAccessor(t *testing.T) {
	target := object.New(nil).Put("_score", 0)
	target.DefineAccessor("score",
		func(this object.Target) (object.Value, error) { return reflection.Get(this, "_score") },
		func(this object.Target, v object.Value) error {
			_, err := reflection.Set(this, "_score", v)
			return err
		})

	p := mustWrap(t, target, Options{
		Alias: map[string]string{"points": "score"},
		Rules: []Rule{AtMost("points", 100)},
	})

	if ok, err := reflection.Set(p, "points", 80); err != nil || !ok {
		t.Fatalf("Set(points) = %v, %v", ok, err)
	}
	if v, _ := reflection.Get(target, "_score"); v != 80 {
		t.Errorf("_score = %v, want 80", v)
	}
	if v, _ := reflection.Get(p, "points"); v != 80 {
		t.Errorf("points = %v, want 80", v)
	}
	if _, err := reflection.Set(p, "points", 101); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("Set(points, 101): err = %v", err)
	}
	if has, _ := reflection.Has(p, "points"); !has {
		t.Error("alias should be visible to has")
	}
}

func TestTraceKeepsSemantics(t *testing.T) {
	target := object.New(nil)
	p := mustWrap(t, target, Options{Trace: true})

	if v, _ := reflection.Get(p, "name"); !object.IsUndefined(v) {
		t.Errorf("name = %v, want undefined", v)
	}
	reflection.Set(p, "name", "lisi")
	if got := object.Format(target); got != "{ name: 'lisi' }" {
		t.Errorf("target = %q", got)
	}
}

func TestAliasChecksResolvedKey(t *testing.T) {
	target := object.New(nil).Put("score", 10)
	p := mustWrap(t, target, Options{
		Alias: map[string]string{"points": "score"},
		Rules: []Rule{Range("score", 0, 150)},
	})
	if _, err := reflection.Set(p, "points", 180); !errors.Is(err, object.ErrPolicyRejected) {
		t.Errorf("err = %v, want the score range to cover its alias", err)
	}
	if v, _ := reflection.Get(target, "score"); v != 10 {
		t.Errorf("score = %v, want 10", v)
	}
}
