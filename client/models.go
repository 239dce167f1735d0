package client

import (
	"io"
	"time"
)

// LoginRequest is the credential exchange payload
type LoginRequest struct {
	StudentUsername string `json:"studentUsername"`
	StudentPassword string `json:"studentPassword"`
}

// LoginResponse carries the issued credential
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// Student is the student record, also used as the full replace body
type Student struct {
	ID               int    `json:"id,omitempty"`
	StudentFirstName string `json:"studentFirstName"`
	StudentLastName  string `json:"studentLastName"`
	StudentID        int    `json:"studentId"`
	StudentEmail     string `json:"studentEmail"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	PhoneNo          string `json:"phoneNo,omitempty"`
	PasswordHash     string `json:"passwordHash,omitempty"`
}

// FullName joins first and last name
func (s Student) FullName() string {
	switch {
	case s.StudentFirstName == "":
		return s.StudentLastName
	case s.StudentLastName == "":
		return s.StudentFirstName
	}
	return s.StudentFirstName + " " + s.StudentLastName
}

type Classroom struct {
	ID          int    `json:"id"`
	ClassName   string `json:"className"`
	ClassCode   string `json:"classCode"`
	TeacherID   int    `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	SubjectID   int    `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Days        string `json:"days"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

type AttendanceRecord struct {
	ID            int    `json:"id"`
	StudentID     int    `json:"studentId"`
	StudentName   string `json:"studentName"`
	ClassroomID   int    `json:"classroomId"`
	ClassroomName string `json:"classroomName"`
	Date          string `json:"date"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks"`
}

type GradeRecord struct {
	ID            int     `json:"id,omitempty"`
	StudentID     int     `json:"studentId,omitempty"`
	SubjectName   string  `json:"subjectName"`
	TeacherName   string  `json:"teacherName"`
	ExamName      string  `json:"examName"`
	Grade         string  `json:"grade"`
	MarksObtained float64 `json:"marksObtained"`
	TotalMarks    float64 `json:"totalMarks"`
	Remarks       string  `json:"remarks"`
}

type Notice struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	NoticeDate  string `json:"noticeDate"`
	PostedBy    string `json:"postedBy,omitempty"`
}

// NoticeInput is the create notice body
type NoticeInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	NoticeDate  string `json:"noticeDate"`
}

type Assignment struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ClassroomID   int    `json:"classroomId,omitempty"`
	ClassroomName string `json:"classroomName,omitempty"`
	DueDate       string `json:"dueDate"`
	FilePath      string `json:"filePath,omitempty"`
}

// Submitted reports whether the backend has a file on record
func (a Assignment) Submitted() bool {
	return a.FilePath != ""
}

// DueDay returns the date part of DueDate
func (a Assignment) DueDay() string {
	if len(a.DueDate) > 10 {
		return a.DueDate[:10]
	}
	return a.DueDate
}

// SubmissionUpload holds the multipart fields of a student submission
type SubmissionUpload struct {
	StudentID        int
	AssignmentID     int
	AssignmentTitle  string
	StudentFirstName string
	StudentLastName  string
	SubmittedOn      time.Time
	FileName         string
	File             io.Reader
}

// SubmissionResult is the optional body returned by an upload
type SubmissionResult struct {
	SubmissionFilePath string `json:"submissionFilePath,omitempty"`
	FilePath           string `json:"filePath,omitempty"`
}

// Path returns whichever file path the server reported
func (r SubmissionResult) Path() string {
	if r.SubmissionFilePath != "" {
		return r.SubmissionFilePath
	}
	return r.FilePath
}

// FeeVoucher is the fee voucher request body
type FeeVoucher struct {
	CompanyName      string `json:"companyName"`
	SiteLocation     string `json:"siteLocation"`
	ContactPerson    string `json:"contactPerson"`
	ContactNo        string `json:"contactNo"`
	SerialNo         string `json:"serialNo"`
	InvoiceNo        string `json:"invoiceNo"`
	Amount           string `json:"amount"`
	DueDate          string `json:"dueDate"`
	StudentFirstName string `json:"studentFirstName"`
	StudentLastName  string `json:"studentLastName"`
	StudentEmail     string `json:"studentEmail"`
	StudentID        int    `json:"studentId"`
	DeviceModel      string `json:"deviceModel"`
	VisitFrequency   string `json:"visitFrequency"`
	VehicleNumber    string `json:"vehicleNumber"`
	SeatCapacity     string `json:"seatCapacity"`
	VisitDate        string `json:"visitDate"`
	CustomerRemarks  string `json:"customerRemarks"`
	VoucherRemarks   string `json:"voucherRemarks"`
}

// NewFeeVoucher prefills a voucher for student, dated today
func NewFeeVoucher(student Student, now time.Time) FeeVoucher {
	today := now.Format(time.DateOnly)
	return FeeVoucher{
		CompanyName:      "School Management",
		ContactPerson:    "Accounts Department",
		ContactNo:        student.PhoneNo,
		DueDate:          today,
		VisitDate:        today,
		StudentFirstName: student.StudentFirstName,
		StudentLastName:  student.StudentLastName,
		StudentEmail:     student.StudentEmail,
		StudentID:        student.StudentID,
	}
}
