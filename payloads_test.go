package portal

import (
	"errors"
	"mime/multipart"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-student-portal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationPayload_ValidateReportsMissingFirst(t *testing.T) {
	p := RegistrationPayload{
		Email:           "not-an-email",
		Password:        "a",
		ConfirmPassword: "b",
	}

	fields := FormatValidationErrorToMap(p.Validate())
	assert.Equal(t, msgFillAllFields, fields["studentFirstName"])
	assert.NotContains(t, fields, "studentEmail")
	assert.NotContains(t, fields, "confirmPassword")
}

func TestRegistrationPayload_Student(t *testing.T) {
	p := RegistrationPayload{
		FirstName:   " Ada ",
		LastName:    "Lovelace",
		StudentID:   "1001",
		Email:       "ada@example.com",
		Gender:      GenderOther,
		OtherGender: " Nonbinary ",
		Phone:       "+1 650-253-0000",
		Password:    "pw",
	}

	s := p.Student()
	assert.Equal(t, "Ada", s.StudentFirstName)
	assert.Equal(t, 1001, s.StudentID)
	assert.Equal(t, "Nonbinary", s.Gender)
	assert.Equal(t, "pw", s.PasswordHash)
	assert.Equal(t, "+16502530000", s.PhoneNo)

	p.Phone = "020 7946 0018"
	assert.Equal(t, "+442079460018", p.WithPhoneRegion("GB").Student().PhoneNo)

	p.Phone = ""
	assert.Empty(t, p.Student().PhoneNo)
}

func TestRegistrationPayload_PhoneRegion(t *testing.T) {
	p := RegistrationPayload{
		FirstName: "A", LastName: "B", StudentID: "1", Email: "a@b.co",
		DateOfBirth: "2000-01-01", Address: "x", City: "y", Gender: "Male",
		Nationality: "z", Password: "p", ConfirmPassword: "p",
		Phone: "020 7946 0018",
	}

	assert.Error(t, p.WithPhoneRegion("US").Validate())
	assert.NoError(t, p.WithPhoneRegion("GB").Validate())
}

func TestProfilePayload_Student(t *testing.T) {
	p := ProfilePayload{FirstName: "Ada", LastName: "L", StudentID: "7", Email: "ada@example.com"}
	require.NoError(t, p.Validate())

	s := p.Student(15)
	assert.Equal(t, 15, s.ID)
	assert.Equal(t, 7, s.StudentID)
	assert.Empty(t, s.PasswordHash)

	p.NewPassword = "next"
	assert.Equal(t, "next", p.Student(15).PasswordHash)

	p.Email = "bad"
	assert.Equal(t, msgInvalidEmail, FormatValidationErrorToMap(p.Validate())["studentEmail"])
}

func TestNoticePayload_Validate(t *testing.T) {
	err := NoticePayload{Description: "x"}.Validate()
	assert.Equal(t, "Title & Date are required!", ValidationSummary(err, "title", "noticeDate"))

	assert.NoError(t, NoticePayload{Title: "t", NoticeDate: "2024-01-01"}.Validate())
}

func TestSubmissionPayload_Validate(t *testing.T) {
	err := SubmissionPayload{AssignmentTitle: "Essay"}.Validate()
	assert.Equal(t, "Please select a file first.", ValidationSummary(err, "file"))

	assert.NoError(t, SubmissionPayload{File: &multipart.FileHeader{Filename: "a.pdf", Size: 3}}.Validate())
}

func TestFeeVoucherPayload(t *testing.T) {
	p := FeeVoucherPayload{StudentEmail: "ada@example.com", StudentID: "x", Amount: "ten"}
	fields := FormatValidationErrorToMap(p.Validate())
	assert.Equal(t, msgStudentIDNumber, fields["studentId"])
	assert.Contains(t, fields, "amount")

	defaults := client.NewFeeVoucher(client.Student{StudentFirstName: "Ada", StudentID: 3}, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	v := FeeVoucherPayload{StudentID: "9", Amount: "100", CompanyName: " "}.Voucher(defaults)
	assert.Equal(t, 9, v.StudentID)
	assert.Equal(t, "100", v.Amount)
	assert.Equal(t, "Ada", v.StudentFirstName)
	assert.Equal(t, "School Management", v.CompanyName)
	assert.Equal(t, "2024-05-01", v.DueDate)
}

func TestValidatePhoneNumber(t *testing.T) {
	rule := ValidatePhoneNumber("")
	assert.NoError(t, rule(""))
	assert.NoError(t, rule("(650) 253-0000"))
	assert.NoError(t, rule("+44 20 7946 0018"))
	assert.EqualError(t, rule("12"), msgInvalidPhone)
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "+16502530000", FormatPhoneNumber("(650) 253-0000", "us"))
	assert.Equal(t, "garbage", FormatPhoneNumber("garbage", ""))
	assert.Equal(t, "", FormatPhoneNumber("", "GB"))
}

func TestFormatValidationErrorToMap(t *testing.T) {
	assert.Empty(t, FormatValidationErrorToMap(nil))
	assert.Equal(t, map[string]string{"form": "boom"}, FormatValidationErrorToMap(errors.New("boom")))

	err := validation.Errors{"b": errors.New("second"), "a": errors.New("first"), "c": nil}
	assert.Equal(t, map[string]string{"a": "first", "b": "second"}, FormatValidationErrorToMap(err))
}

func TestValidationSummary(t *testing.T) {
	err := validation.Errors{"b": errors.New("second"), "a": errors.New("first")}
	assert.Equal(t, "second", ValidationSummary(err, "b", "a"))
	assert.Equal(t, "first", ValidationSummary(err))
	assert.Equal(t, "", ValidationSummary(nil))
}
