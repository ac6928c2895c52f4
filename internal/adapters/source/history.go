package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"
)

// MessageStream yields the messages of one channel oldest first.
// Next returns io.EOF once the requested range is exhausted
type MessageStream interface {
	Next() (Message, error)
}

// History opens an oldest-first stream over [from, to) for one channel.
// The first page is fetched eagerly so permission and existence failures
// surface here, before the caller commits any per-channel work
func (c *Client) History(ctx context.Context, channelID int64, from, to time.Time) (MessageStream, error) {
	st := &historyStream{
		c:         c,
		ctx:       ctx,
		channelID: channelID,
		from:      from.UTC(),
		to:        to.UTC(),
	}
	if err := st.fetch(0); err != nil {
		return nil, err
	}
	return st, nil
}

// historyStream pages through /v1/channels/{id}/messages with an id cursor
type historyStream struct {
	c         *Client
	ctx       context.Context
	channelID int64
	from, to  time.Time

	page []Message
	pos  int
	last bool // short page seen, no further fetch
	err  error
}

// Next reads the next message; returns io.EOF when done
func (st *historyStream) Next() (Message, error) {
	if st.err != nil {
		return Message{}, st.err
	}
	for {
		if st.pos < len(st.page) {
			m := st.page[st.pos]
			st.pos++
			// the server bounds the range; the stream re-checks so a
			// misbehaving page can never leak rows past the window edge
			if m.PostedAt.Before(st.from) {
				continue
			}
			if !m.PostedAt.Before(st.to) {
				st.err = io.EOF
				return Message{}, io.EOF
			}
			return m, nil
		}
		if st.last || len(st.page) == 0 {
			st.err = io.EOF
			return Message{}, io.EOF
		}
		after := st.page[len(st.page)-1].ID
		if err := st.fetch(after); err != nil {
			st.err = err
			return Message{}, err
		}
	}
}

// fetch loads the page following the given message id cursor
func (st *historyStream) fetch(after int64) error {
	q := url.Values{}
	q.Set("from", st.from.Format(time.RFC3339Nano))
	q.Set("to", st.to.Format(time.RFC3339Nano))
	q.Set("limit", strconv.Itoa(defaultPageSize))
	if after > 0 {
		q.Set("after", strconv.FormatInt(after, 10))
	}
	path := fmt.Sprintf("/v1/channels/%d/messages?%s", st.channelID, q.Encode())

	page, err := getJSON[[]Message](st.ctx, st.c, "history", path)
	if err != nil {
		return err
	}
	st.page = page
	st.pos = 0
	st.last = len(page) < defaultPageSize
	return nil
}
