package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Login exchanges username and password for a credential
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req, err := c.jsonRequest("login", http.MethodPost, "/api/Student/login", authNone, LoginRequest{
		StudentUsername: username,
		StudentPassword: password,
	})
	if err != nil {
		return "", err
	}

	var out LoginResponse
	if _, err := c.do(ctx, req, &out); err != nil {
		return "", err
	}

	token := strings.TrimSpace(out.Token)
	if token == "" {
		return "", wrapCause("login", ErrTokenMissing, ErrTokenMissing)
	}

	return token, nil
}

// RegisterStudent creates a student account
func (c *Client) RegisterStudent(ctx context.Context, student Student) error {
	req, err := c.jsonRequest("register student", http.MethodPost, "/api/Student", authNone, student)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req, nil)
	return err
}

// GetStudent fetches the student record by database id
func (c *Client) GetStudent(ctx context.Context, id int) (*Student, error) {
	req, err := c.jsonRequest("get student", http.MethodGet, "/api/Student/"+strconv.Itoa(id), authRequired, nil)
	if err != nil {
		return nil, err
	}

	out := &Student{}
	if _, err := c.do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStudent replaces the full record. The record id is forced to id.
// A 204 answer returns the submitted record.
func (c *Client) UpdateStudent(ctx context.Context, id int, student Student) (*Student, error) {
	student.ID = id

	req, err := c.jsonRequest("update student", http.MethodPut, "/api/Student/"+strconv.Itoa(id), authRequired, student)
	if err != nil {
		return nil, err
	}

	out := &Student{}
	status, err := c.do(ctx, req, out)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNoContent || out.StudentEmail == "" && out.StudentID == 0 {
		submitted := student
		submitted.PasswordHash = ""
		return &submitted, nil
	}

	out.PasswordHash = ""
	return out, nil
}
