package branch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/luanzeba/gh-csm/internal/gh"
)

// fakePlatform records every call made by the resolver.
type fakePlatform struct {
	repos    map[string]*gh.Repository
	branches map[string][]string
	viewErr  error
	calls    []string
}

func (f *fakePlatform) ViewRepo(ctx context.Context, repo string) (*gh.Repository, error) {
	f.calls = append(f.calls, "view "+repo)
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	info, ok := f.repos[repo]
	if !ok {
		return nil, fmt.Errorf("gh repo failed: %w", gh.ErrNotFound)
	}
	return info, nil
}

func (f *fakePlatform) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	f.calls = append(f.calls, "check "+branch)
	for _, b := range f.branches[repo] {
		if b == branch {
			return true, nil
		}
	}
	return false, nil
}

type fakeSeeder struct {
	seeded []string
	err    error
}

func (f *fakeSeeder) Seed(ctx context.Context, repo, branch string) error {
	f.seeded = append(f.seeded, repo+"@"+branch)
	return f.err
}

func TestResolveUsesDefaultBranch(t *testing.T) {
	p := &fakePlatform{
		repos:    map[string]*gh.Repository{"acme/widgets": {DefaultBranch: "trunk"}},
		branches: map[string][]string{"acme/widgets": {"main", "trunk"}},
	}
	r := NewResolver(p, &fakeSeeder{})

	got, err := r.Resolve(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got != "trunk" {
		t.Errorf("Resolve() = %q, want trunk", got)
	}
	if want := []string{"view acme/widgets"}; !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v (no branch checks)", p.calls, want)
	}
}

func TestResolveProbesCandidatesInOrder(t *testing.T) {
	tests := []struct {
		name      string
		branches  []string
		want      string
		wantCalls []string
	}{
		{
			name:      "master only",
			branches:  []string{"master"},
			want:      "master",
			wantCalls: []string{"view acme/has-master", "check main", "check master"},
		},
		{
			name:      "develop and master",
			branches:  []string{"develop", "master"},
			want:      "master",
			wantCalls: []string{"view acme/has-master", "check main", "check master"},
		},
		{
			name:      "main beats everything",
			branches:  []string{"develop", "master", "main"},
			want:      "main",
			wantCalls: []string{"view acme/has-master", "check main"},
		},
		{
			name:      "develop only",
			branches:  []string{"develop", "feature/x"},
			want:      "develop",
			wantCalls: []string{"view acme/has-master", "check main", "check master", "check develop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlatform{
				repos:    map[string]*gh.Repository{"acme/has-master": {}},
				branches: map[string][]string{"acme/has-master": tt.branches},
			}
			s := &fakeSeeder{}
			r := NewResolver(p, s)

			got, err := r.Resolve(context.Background(), "acme/has-master")
			if err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(p.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", p.calls, tt.wantCalls)
			}
			if len(s.seeded) != 0 {
				t.Errorf("seeded = %v, want none", s.seeded)
			}
		})
	}
}

func TestResolveSeedsEmptyRepository(t *testing.T) {
	p := &fakePlatform{repos: map[string]*gh.Repository{"acme/empty-repo": {IsEmpty: true}}}
	s := &fakeSeeder{}
	r := NewResolver(p, s)

	got, err := r.Resolve(context.Background(), "acme/empty-repo")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got != "main" {
		t.Errorf("Resolve() = %q, want main", got)
	}
	if want := []string{"acme/empty-repo@main"}; !reflect.DeepEqual(s.seeded, want) {
		t.Errorf("seeded = %v, want %v", s.seeded, want)
	}
}

func TestResolveSeedFailure(t *testing.T) {
	p := &fakePlatform{repos: map[string]*gh.Repository{"acme/empty-repo": {}}}
	s := &fakeSeeder{err: errors.New("push rejected")}
	r := NewResolver(p, s)

	_, err := r.Resolve(context.Background(), "acme/empty-repo")
	if !errors.Is(err, ErrBootstrapFailed) {
		t.Fatalf("Resolve() error = %v, want ErrBootstrapFailed", err)
	}
	if len(s.seeded) != 1 {
		t.Errorf("seed attempts = %d, want exactly 1", len(s.seeded))
	}
}

func TestResolveRepoNotFound(t *testing.T) {
	p := &fakePlatform{repos: map[string]*gh.Repository{}}
	s := &fakeSeeder{}
	r := NewResolver(p, s)

	_, err := r.Resolve(context.Background(), "acme/nope")
	if !errors.Is(err, ErrRepoNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrRepoNotFound", err)
	}
	if want := []string{"view acme/nope"}; !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v (no branch checks)", p.calls, want)
	}
	if len(s.seeded) != 0 {
		t.Errorf("seeded = %v, want none", s.seeded)
	}
}

func TestResolveQueryFailureIsNotNotFound(t *testing.T) {
	p := &fakePlatform{viewErr: errors.New("network unreachable")}
	r := NewResolver(p, &fakeSeeder{})

	_, err := r.Resolve(context.Background(), "acme/widgets")
	if err == nil {
		t.Fatal("Resolve() should fail")
	}
	if errors.Is(err, ErrRepoNotFound) {
		t.Errorf("Resolve() error = %v, should not be ErrRepoNotFound", err)
	}
}

func TestResolveInvalidRepo(t *testing.T) {
	for _, repo := range []string{"", "widgets", "/widgets", "acme/", "a/b/c", "acme/wid gets"} {
		p := &fakePlatform{}
		r := NewResolver(p, &fakeSeeder{})

		if _, err := r.Resolve(context.Background(), repo); !errors.Is(err, ErrInvalidRepo) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidRepo", repo, err)
		}
		if len(p.calls) != 0 {
			t.Errorf("Resolve(%q) made calls %v", repo, p.calls)
		}
	}
}

func TestRepoName(t *testing.T) {
	if got := RepoName("acme/empty-repo"); got != "empty-repo" {
		t.Errorf("RepoName() = %q, want empty-repo", got)
	}
	if got := RepoName("widgets"); got != "widgets" {
		t.Errorf("RepoName() = %q, want widgets", got)
	}
}
