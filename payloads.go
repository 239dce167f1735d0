package portal

import (
	"errors"
	"mime/multipart"
	"regexp"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-student-portal/client"
	"github.com/nyaruka/phonenumbers"
)

const (
	GenderOther = "Other"

	msgFillAllFields   = "Please fill out all fields."
	msgInvalidEmail    = "Please enter a valid email address."
	msgStudentIDNumber = "Student ID must be a number."
	msgPasswordsMatch  = "Passwords do not match."
	msgGenderOther     = "Please specify your gender when selecting Other."
	msgInvalidPhone    = "Please enter a valid phone number."
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// LoginPayload is the login form
type LoginPayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("Username is required.")),
		validation.Field(&r.Password, validation.Required.Error("Password is required.")),
	)
}

// RegistrationPayload is the student registration form
type RegistrationPayload struct {
	FirstName       string `form:"studentFirstName" json:"studentFirstName"`
	LastName        string `form:"studentLastName" json:"studentLastName"`
	StudentID       string `form:"studentId" json:"studentId"`
	Email           string `form:"studentEmail" json:"studentEmail"`
	DateOfBirth     string `form:"dateOfBirth" json:"dateOfBirth"`
	Address         string `form:"address" json:"address"`
	City            string `form:"city" json:"city"`
	Gender          string `form:"gender" json:"gender"`
	OtherGender     string `form:"otherGender" json:"otherGender"`
	Nationality     string `form:"nationality" json:"nationality"`
	Phone           string `form:"phoneNo" json:"phoneNo"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`

	phoneRegion string
}

// WithPhoneRegion sets the region used to parse numbers without a
// country prefix
func (r RegistrationPayload) WithPhoneRegion(region string) RegistrationPayload {
	r.phoneRegion = region
	return r
}

// Validate checks presence first and formats second, so a half filled
// form only reports the missing fields.
func (r RegistrationPayload) Validate() error {
	required := validation.Required.Error(msgFillAllFields)

	err := validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, required),
		validation.Field(&r.LastName, required),
		validation.Field(&r.StudentID, required),
		validation.Field(&r.Email, required),
		validation.Field(&r.DateOfBirth, required),
		validation.Field(&r.Address, required),
		validation.Field(&r.City, required),
		validation.Field(&r.Gender, required),
		validation.Field(&r.Nationality, required),
		validation.Field(&r.Phone, required),
		validation.Field(&r.Password, required),
		validation.Field(&r.ConfirmPassword, required),
	)
	if err != nil {
		return err
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Match(emailPattern).Error(msgInvalidEmail)),
		validation.Field(&r.StudentID, is.Digit.Error(msgStudentIDNumber)),
		validation.Field(&r.ConfirmPassword, validation.By(ValidateStringEquals(r.Password, msgPasswordsMatch))),
		validation.Field(&r.OtherGender, validation.By(requiredWhen(r.Gender == GenderOther, msgGenderOther))),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber(r.phoneRegion))),
	)
}

// Student builds the registration body. A custom gender replaces Other.
func (r RegistrationPayload) Student() client.Student {
	id, _ := strconv.Atoi(strings.TrimSpace(r.StudentID))

	gender := r.Gender
	if gender == GenderOther {
		gender = strings.TrimSpace(r.OtherGender)
	}

	return client.Student{
		StudentFirstName: strings.TrimSpace(r.FirstName),
		StudentLastName:  strings.TrimSpace(r.LastName),
		StudentID:        id,
		StudentEmail:     strings.TrimSpace(r.Email),
		DateOfBirth:      r.DateOfBirth,
		Address:          r.Address,
		City:             r.City,
		Gender:           gender,
		Nationality:      r.Nationality,
		PhoneNo:          FormatPhoneNumber(strings.TrimSpace(r.Phone), r.phoneRegion),
		PasswordHash:     r.Password,
	}
}

// ProfilePayload is the profile edit form. NewPassword is optional.
type ProfilePayload struct {
	FirstName   string `form:"studentFirstName" json:"studentFirstName"`
	LastName    string `form:"studentLastName" json:"studentLastName"`
	StudentID   string `form:"studentId" json:"studentId"`
	Email       string `form:"studentEmail" json:"studentEmail"`
	DateOfBirth string `form:"dateOfBirth" json:"dateOfBirth"`
	Address     string `form:"address" json:"address"`
	City        string `form:"city" json:"city"`
	Gender      string `form:"gender" json:"gender"`
	Nationality string `form:"nationality" json:"nationality"`
	Phone       string `form:"phoneNo" json:"phoneNo"`
	NewPassword string `form:"newPassword" json:"newPassword"`

	phoneRegion string
}

func (r ProfilePayload) WithPhoneRegion(region string) ProfilePayload {
	r.phoneRegion = region
	return r
}

// Validate will run validation rules
func (r ProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.StudentID, validation.Required, is.Digit.Error(msgStudentIDNumber)),
		validation.Field(&r.Email, validation.Required, is.Email.Error(msgInvalidEmail)),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber(r.phoneRegion))),
		validation.Field(&r.NewPassword, validation.Length(0, 100)),
	)
}

// Student builds the full replace body for record id
func (r ProfilePayload) Student(id int) client.Student {
	studentID, _ := strconv.Atoi(strings.TrimSpace(r.StudentID))
	return client.Student{
		ID:               id,
		StudentFirstName: strings.TrimSpace(r.FirstName),
		StudentLastName:  strings.TrimSpace(r.LastName),
		StudentID:        studentID,
		StudentEmail:     strings.TrimSpace(r.Email),
		DateOfBirth:      r.DateOfBirth,
		Address:          r.Address,
		City:             r.City,
		Gender:           r.Gender,
		Nationality:      r.Nationality,
		PhoneNo:          FormatPhoneNumber(strings.TrimSpace(r.Phone), r.phoneRegion),
		PasswordHash:     r.NewPassword,
	}
}

// NoticePayload is the create notice form
type NoticePayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	NoticeDate  string `form:"noticeDate" json:"noticeDate"`
}

// Validate will run validation rules
func (r NoticePayload) Validate() error {
	required := validation.Required.Error("Title & Date are required!")
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, required),
		validation.Field(&r.NoticeDate, required),
	)
}

func (r NoticePayload) Input() client.NoticeInput {
	return client.NoticeInput{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		NoticeDate:  r.NoticeDate,
	}
}

// SubmissionPayload is the assignment upload form
type SubmissionPayload struct {
	AssignmentTitle string                `form:"assignmentTitle" json:"assignmentTitle"`
	File            *multipart.FileHeader `form:"-" json:"file"`
}

// Validate will run validation rules
func (r SubmissionPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.File, validation.Required.Error("Please select a file first.")),
	)
}

// JoinClassPayload is the join class form
type JoinClassPayload struct {
	Subject string `form:"subject" json:"subject"`
}

// Validate will run validation rules
func (r JoinClassPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Subject, validation.Required.Error("Please select a subject to join.")),
	)
}

// FeeVoucherPayload is the fee voucher form, prefilled from the profile
type FeeVoucherPayload struct {
	CompanyName      string `form:"companyName" json:"companyName"`
	SiteLocation     string `form:"siteLocation" json:"siteLocation"`
	ContactPerson    string `form:"contactPerson" json:"contactPerson"`
	ContactNo        string `form:"contactNo" json:"contactNo"`
	SerialNo         string `form:"serialNo" json:"serialNo"`
	InvoiceNo        string `form:"invoiceNo" json:"invoiceNo"`
	Amount           string `form:"amount" json:"amount"`
	DueDate          string `form:"dueDate" json:"dueDate"`
	StudentFirstName string `form:"studentFirstName" json:"studentFirstName"`
	StudentLastName  string `form:"studentLastName" json:"studentLastName"`
	StudentEmail     string `form:"studentEmail" json:"studentEmail"`
	StudentID        string `form:"studentId" json:"studentId"`
	DeviceModel      string `form:"deviceModel" json:"deviceModel"`
	VisitFrequency   string `form:"visitFrequency" json:"visitFrequency"`
	VehicleNumber    string `form:"vehicleNumber" json:"vehicleNumber"`
	SeatCapacity     string `form:"seatCapacity" json:"seatCapacity"`
	VisitDate        string `form:"visitDate" json:"visitDate"`
	CustomerRemarks  string `form:"customerRemarks" json:"customerRemarks"`
	VoucherRemarks   string `form:"voucherRemarks" json:"voucherRemarks"`
}

// Validate will run validation rules
func (r FeeVoucherPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StudentEmail, validation.Required, is.Email.Error(msgInvalidEmail)),
		validation.Field(&r.StudentID, is.Digit.Error(msgStudentIDNumber)),
		validation.Field(&r.Amount, is.Float),
	)
}

// Voucher merges the form over the defaults for student
func (r FeeVoucherPayload) Voucher(defaults client.FeeVoucher) client.FeeVoucher {
	v := defaults
	set := func(dst *string, src string) {
		if s := strings.TrimSpace(src); s != "" {
			*dst = s
		}
	}

	set(&v.CompanyName, r.CompanyName)
	set(&v.SiteLocation, r.SiteLocation)
	set(&v.ContactPerson, r.ContactPerson)
	set(&v.ContactNo, r.ContactNo)
	set(&v.SerialNo, r.SerialNo)
	set(&v.InvoiceNo, r.InvoiceNo)
	set(&v.Amount, r.Amount)
	set(&v.DueDate, r.DueDate)
	set(&v.StudentFirstName, r.StudentFirstName)
	set(&v.StudentLastName, r.StudentLastName)
	set(&v.StudentEmail, r.StudentEmail)
	set(&v.DeviceModel, r.DeviceModel)
	set(&v.VisitFrequency, r.VisitFrequency)
	set(&v.VehicleNumber, r.VehicleNumber)
	set(&v.SeatCapacity, r.SeatCapacity)
	set(&v.VisitDate, r.VisitDate)
	set(&v.CustomerRemarks, r.CustomerRemarks)
	set(&v.VoucherRemarks, r.VoucherRemarks)

	if id, err := strconv.Atoi(strings.TrimSpace(r.StudentID)); err == nil {
		v.StudentID = id
	}

	return v
}

// ValidateStringEquals fails unless the value equals str
func ValidateStringEquals(str, message string) validation.RuleFunc {
	if message == "" {
		message = "values must match"
	}
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New(message)
		}
		return nil
	}
}

// ValidatePhoneNumber accepts empty values and numbers libphonenumber
// considers valid for region. Numbers with a + prefix ignore region.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	if region == "" {
		region = "US"
	}
	return func(value any) error {
		s, _ := value.(string)
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}

		num, err := phonenumbers.Parse(s, strings.ToUpper(region))
		if err != nil || !phonenumbers.IsValidNumber(num) {
			return errors.New(msgInvalidPhone)
		}
		return nil
	}
}

// FormatPhoneNumber renders a valid number in E164, anything else as is.
// Region defaults to US.
func FormatPhoneNumber(s, region string) string {
	if region == "" {
		region = "US"
	}
	num, err := phonenumbers.Parse(s, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return s
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func requiredWhen(cond bool, message string) validation.RuleFunc {
	return func(value any) error {
		if !cond {
			return nil
		}
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return errors.New(message)
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo errors into field -> message.
// Errors that are not field errors end up under "form".
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		out["form"] = err.Error()
		return out
	}

	for field, e := range errs {
		if e == nil {
			continue
		}
		out[field] = e.Error()
	}

	return out
}

// ValidationSummary returns one message for an alert: the first field in
// order that failed, or the first failed field alphabetically.
func ValidationSummary(err error, order ...string) string {
	fields := FormatValidationErrorToMap(err)
	if len(fields) == 0 {
		return ""
	}

	for _, name := range order {
		if msg, ok := fields[name]; ok {
			return msg
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fields[keys[0]]
}
