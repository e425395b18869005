package preview

import (
	"time"

	"golang.org/x/net/html"
)

// Task is one in-flight fragment fetch.
type Task struct {
	ID      string
	URL     string
	Element *html.Node
	Depth   int
	Started time.Time

	done     chan struct{}
	body     string
	err      error
	duration time.Duration
}

func newTask(id, url string, el *html.Node, depth int) *Task {
	return &Task{
		ID:      id,
		URL:     url,
		Element: el,
		Depth:   depth,
		Started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Done is closed once the fetch has finished. The element itself is
// updated later, when the session loop picks the task up.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the fetch finishes and returns its outcome.
func (t *Task) Result() (string, error) {
	<-t.done
	return t.body, t.err
}

// Duration is the wall time the fetch took. Zero until Done is closed.
func (t *Task) Duration() time.Duration {
	select {
	case <-t.done:
		return t.duration
	default:
		return 0
	}
}

func (t *Task) finish(body string, err error) {
	t.body = body
	t.err = err
	t.duration = time.Since(t.Started)
	close(t.done)
}
