package client

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ListAssignments returns every assignment
func (c *Client) ListAssignments(ctx context.Context) ([]Assignment, error) {
	req, err := c.jsonRequest("list assignments", http.MethodGet, "/api/Assignment", authOptional, nil)
	if err != nil {
		return nil, err
	}

	out := []Assignment{}
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAssignment returns a single assignment
func (c *Client) GetAssignment(ctx context.Context, id int) (*Assignment, error) {
	req, err := c.jsonRequest("get assignment", http.MethodGet, "/api/Assignment/"+strconv.Itoa(id), authOptional, nil)
	if err != nil {
		return nil, err
	}

	out := &Assignment{}
	if _, err := c.do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadSubmission sends a submission file as multipart/form-data
func (c *Client) UploadSubmission(ctx context.Context, up SubmissionUpload) (*SubmissionResult, error) {
	const op = "upload submission"

	if up.File == nil {
		return nil, RequestError(op, errors.New("missing file"))
	}

	submittedOn := up.SubmittedOn
	if submittedOn.IsZero() {
		submittedOn = time.Now()
	}

	fileName := up.FileName
	if fileName == "" {
		fileName = "submission"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeSubmission(mw, up, fileName, submittedOn))
	}()

	req := request{
		op:          op,
		method:      http.MethodPost,
		path:        "/api/StudentAssignment/UploadStudentAssignment",
		auth:        authRequired,
		body:        pr,
		contentType: mw.FormDataContentType(),
	}

	out := &SubmissionResult{}
	_, err := c.do(ctx, req, out)
	// unblock the writer if the request never drained the body
	pr.Close()
	if err != nil {
		// the upload went through, only the optional body is unreadable
		if errors.Is(err, ErrDecodeResponse) {
			return &SubmissionResult{}, nil
		}
		return nil, err
	}

	return out, nil
}

func writeSubmission(mw *multipart.Writer, up SubmissionUpload, fileName string, submittedOn time.Time) error {
	fields := []struct{ name, value string }{
		{"Id", "0"},
		{"StudentId", strconv.Itoa(up.StudentID)},
		{"AssignmentId", strconv.Itoa(up.AssignmentID)},
		{"SubmissionFilePath", ""},
		{"SubmittedOn", submittedOn.UTC().Format("2006-01-02T15:04:05.000Z")},
		{"StudentFirstName", up.StudentFirstName},
		{"StudentLastName", up.StudentLastName},
		{"AssignmentTitle", up.AssignmentTitle},
	}

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}

	if _, err := io.Copy(part, up.File); err != nil {
		return err
	}

	return mw.Close()
}

// RequestFeeVoucher asks the API to generate a fee voucher and, when
// sendEmail is set, mail it to toEmail.
func (c *Client) RequestFeeVoucher(ctx context.Context, voucher FeeVoucher, sendEmail bool, toEmail string) error {
	req, err := c.jsonRequest("request fee voucher", http.MethodPost, "/api/StudentFeeVoucher", authRequired, voucher)
	if err != nil {
		return err
	}

	req.query = url.Values{}
	req.query.Set("sendEmail", strconv.FormatBool(sendEmail))
	req.query.Set("toEmail", toEmail)

	_, err = c.do(ctx, req, nil)
	return err
}
