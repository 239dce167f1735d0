package client

import (
	"context"
	"net/http"
)

// NoticeAuthor is shown as the author of every notice
const NoticeAuthor = "Admin"

// ListNotices returns all notices
func (c *Client) ListNotices(ctx context.Context) ([]Notice, error) {
	req, err := c.jsonRequest("list notices", http.MethodGet, "/api/Notice/AllNoticeRecord", authOptional, nil)
	if err != nil {
		return nil, err
	}

	out := []Notice{}
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].PostedBy = NoticeAuthor
	}

	return out, nil
}

// CreateNotice posts a new notice
func (c *Client) CreateNotice(ctx context.Context, in NoticeInput) error {
	req, err := c.jsonRequest("create notice", http.MethodPost, "/api/Notice/CreateNoticeRecord", authOptional, in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req, nil)
	return err
}
