package repository_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/discovery/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteRead(t *testing.T) {
	Convey("Given a profile", t, func() {
		scores := map[string]float64{"tech": 0.7, "art": 0.51, "home cooking": 1}

		Convey("When it is written", func() {
			var buf bytes.Buffer
			So(repository.Write(&buf, scores), ShouldBeNil)

			Convey("Then records are tab separated and sorted by category", func() {
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				So(lines[0], ShouldStartWith, "#")
				So(lines[1:], ShouldResemble, []string{"art\t0.51", "home cooking\t1", "tech\t0.7"})
			})

			Convey("Then reading it back yields the same profile", func() {
				got, err := repository.Read(&buf)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, scores)
			})
		})
	})

	Convey("Given categories that look like comments or contain separators", t, func() {
		scores := map[string]float64{"#tech": 0.7, "music": 0.6, `say "hi"`: 0.3, "a\tb": 0.2, "#": 0.1}

		Convey("When the profile is written and read back", func() {
			var buf bytes.Buffer
			So(repository.Write(&buf, scores), ShouldBeNil)
			got, err := repository.Read(&buf)

			Convey("Then no category is lost", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, scores)
			})
		})

		Convey("When a #-prefixed category is saved through the file store", func() {
			store := repository.NewFileStore(filepath.Join(t.TempDir(), "profile.tsv"))
			ctx := context.Background()
			So(store.Save(ctx, map[string]float64{"#tech": 0.7}), ShouldBeNil)

			Convey("Then it survives a reload", func() {
				got, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, map[string]float64{"#tech": 0.7})
			})
		})
	})

	Convey("Given hand-written snapshots", t, func() {
		Convey("When comments and blank lines are present", func() {
			got, err := repository.Read(strings.NewReader("# note\n\ntech\t0.9\n\n# more\nart\t0.2\n"))
			So(err, ShouldBeNil)
			So(got, ShouldResemble, map[string]float64{"tech": 0.9, "art": 0.2})
		})

		Convey("When a record is malformed", func() {
			for _, bad := range []string{"tech\n", "tech\tmuch\n", "tech\t0.1\textra\n", "\t0.5\n"} {
				_, err := repository.Read(strings.NewReader(bad))
				So(errors.Is(err, repository.ErrSnapshotFormat), ShouldBeTrue)
			}
		})
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file store in a temp dir", t, func() {
		path := filepath.Join(t.TempDir(), "profile.tsv")
		store := repository.NewFileStore(path)

		Convey("When nothing was saved", func() {
			_, err := store.Load(ctx)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a profile is saved twice", func() {
			So(store.Save(ctx, map[string]float64{"tech": 0.6}), ShouldBeNil)
			So(store.Save(ctx, map[string]float64{"tech": 0.8, "art": 0.5}), ShouldBeNil)

			Convey("Then the latest profile is loaded and no temp files remain", func() {
				got, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, map[string]float64{"tech": 0.8, "art": 0.5})

				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(store.Path(), ShouldEqual, path)
			})
		})
	})
}

type fakeProfile struct {
	mu     sync.Mutex
	scores map[string]float64
}

func (p *fakeProfile) Snapshot() map[string]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]float64, len(p.scores))
	for k, v := range p.scores {
		out[k] = v
	}
	return out
}

func (p *fakeProfile) Restore(scores map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scores = scores
}

func TestSnapshotter(t *testing.T) {
	Convey("Given a snapshotter over a file store", t, func() {
		store := repository.NewFileStore(filepath.Join(t.TempDir(), "profile.tsv"))
		profile := &fakeProfile{scores: map[string]float64{"tech": 0.9}}
		snap := repository.NewSnapshotter(store, profile, repository.WithInterval(time.Hour))

		Convey("When restoring with no snapshot on disk", func() {
			So(snap.Restore(context.Background()), ShouldBeNil)
			So(profile.Snapshot(), ShouldResemble, map[string]float64{"tech": 0.9})
		})

		Convey("When the service is stopped", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- snap.Serve(ctx) }()
			cancel()
			err := <-done

			Convey("Then a final snapshot is written and can be restored", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)

				other := &fakeProfile{}
				So(repository.NewSnapshotter(store, other).Restore(context.Background()), ShouldBeNil)
				So(other.Snapshot(), ShouldResemble, map[string]float64{"tech": 0.9})
			})
		})

		Convey("Then it names itself for supervisor logs", func() {
			So(snap.String(), ShouldEqual, "profile-snapshotter")
		})
	})
}
