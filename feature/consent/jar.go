package consent

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// fiberJar exposes the cookies of a request and writes Set-Cookie headers on
// the response. Writes made during the request are visible to later reads.
type fiberJar struct {
	c       *fiber.Ctx
	order   []string
	values  map[string]string
	removed map[string]bool
}

func newFiberJar(c *fiber.Ctx) *fiberJar {
	j := &fiberJar{
		c:       c,
		values:  make(map[string]string),
		removed: make(map[string]bool),
	}
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		name := string(key)
		if _, ok := j.values[name]; !ok {
			j.order = append(j.order, name)
		}
		j.values[name] = string(value)
	})
	return j
}

func (j *fiberJar) All() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(j.order))
	for _, name := range j.order {
		if j.removed[name] {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: j.values[name]})
	}
	return out
}

// Write appends a Set-Cookie header. Headers are added rather than set so
// that deletions for several paths and domains of one name all reach the
// browser.
func (j *fiberJar) Write(ck *http.Cookie) {
	j.c.Response().Header.Add(fiber.HeaderSetCookie, ck.String())

	expired := ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now()))
	if expired {
		j.removed[ck.Name] = true
		return
	}
	if _, ok := j.values[ck.Name]; !ok {
		j.order = append(j.order, ck.Name)
	}
	j.values[ck.Name] = ck.Value
	delete(j.removed, ck.Name)
}
