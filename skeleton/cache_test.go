package skeleton_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/milk9111/skeletal/internal/fixture"
	"github.com/milk9111/skeletal/skeleton"
)

func TestResolveFiles(t *testing.T) {
	cases := []struct {
		ref, skel, atlas string
	}{
		{"actors/hero", "actors/hero.skel.yaml", "actors/hero.atlas.yaml"},
		{"actors/hero.skel.yaml", "actors/hero.skel.yaml", "actors/hero.atlas.yaml"},
		{"a.skel.yaml|b.atlas.yaml", "a.skel.yaml", "b.atlas.yaml"},
		{"a.skel.yaml|", "a.skel.yaml", ""},
	}
	for _, c := range cases {
		t.Run(c.ref, func(t *testing.T) {
			skel, atlas := skeleton.ResolveFiles(c.ref)
			if skel != c.skel || atlas != c.atlas {
				t.Fatalf("ResolveFiles(%q) = %q, %q", c.ref, skel, atlas)
			}
		})
	}
}

func TestCacheRefCounting(t *testing.T) {
	loads := 0
	loader := skeleton.LoaderFunc(func(p string) ([]byte, error) {
		loads++
		return fixture.Loader().LoadBytes(p)
	})
	c := skeleton.NewCache(loader, nil)

	a, err := c.Load("hero")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := c.Load("hero")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if a != b {
		t.Fatalf("cache should share one definition")
	}
	if loads != 2 {
		t.Fatalf("expected one read per file, got %d", loads)
	}
	if c.Refs(a) != 2 {
		t.Fatalf("expected 2 refs, got %d", c.Refs(a))
	}

	c.Release(a)
	if c.Len() != 1 || c.Refs(a) != 1 {
		t.Fatalf("definition should survive one release")
	}
	c.Release(a)
	if c.Len() != 0 || c.Refs(a) != 0 {
		t.Fatalf("definition should be dropped after the last release")
	}
	c.Release(a)
}

func TestCacheInvalidate(t *testing.T) {
	c := skeleton.NewCache(fixture.Loader(), nil)
	old, err := c.Load("hero")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := c.Invalidate("./hero.atlas.yaml"); n != 1 {
		t.Fatalf("expected 1 invalidated entry, got %d", n)
	}
	fresh, err := c.Load("hero")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh == old {
		t.Fatalf("invalidated definition should be rebuilt")
	}
	if c.Refs(old) != 1 {
		t.Fatalf("holders of the old definition keep their reference")
	}
	c.Release(old)
	if c.Refs(fresh) != 1 || c.Len() != 1 {
		t.Fatalf("releasing the old definition must not touch the new one")
	}
}

func TestCacheLoadErrors(t *testing.T) {
	c := skeleton.NewCache(fixture.Loader(), nil)
	_, err := c.Load("villain")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("failed load must not be cached")
	}

	data, err := c.LoadPair("hero"+skeleton.SkeletonExt, "")
	if err != nil {
		t.Fatalf("untextured load: %v", err)
	}
	if data.Atlas != nil {
		t.Fatalf("expected no atlas")
	}
}
