package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event is one dispatched server-sent event.
type Event struct {
	ID   string
	Name string // "message" when the stream names none
	Data string
}

// decoder splits a text/event-stream body into events. Lines end in LF,
// CRLF or CR; a blank line dispatches the pending event.
type decoder struct {
	r      *bufio.Reader
	lastID string
	retry  time.Duration
}

// newDecoder starts from lastID so a stream that sends no id: keeps the
// previous connection's one.
func newDecoder(r io.Reader, lastID string) *decoder {
	return &decoder{r: bufio.NewReader(r), lastID: lastID}
}

// Next returns the next event, or io.EOF when the stream ends. A partial
// event at EOF is discarded.
func (d *decoder) Next() (Event, error) {
	var (
		name    string
		data    strings.Builder
		hasData bool
	)
	for {
		line, err := d.readLine()
		if err != nil {
			return Event{}, err
		}

		if line == "" {
			if !hasData {
				name = ""
				continue
			}
			if name == "" {
				name = "message"
			}
			return Event{ID: d.lastID, Name: name, Data: strings.TrimSuffix(data.String(), "\n")}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				d.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				d.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

func (d *decoder) readLine() (string, error) {
	var b strings.Builder
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return "", err
		}
		switch c {
		case '\n':
			return b.String(), nil
		case '\r':
			if next, err := d.r.Peek(1); err == nil && next[0] == '\n' {
				_, _ = d.r.ReadByte()
			}
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
}
