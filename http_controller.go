package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-student-portal/client"
)

// PortalAPI is the part of the remote API the portal pages use
type PortalAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	RegisterStudent(ctx context.Context, student client.Student) error
	GetStudent(ctx context.Context, id int) (*client.Student, error)
	UpdateStudent(ctx context.Context, id int, student client.Student) (*client.Student, error)
	ListClassrooms(ctx context.Context) ([]client.Classroom, error)
	GetClassroom(ctx context.Context, id int) (*client.Classroom, error)
	AttendanceByStudent(ctx context.Context, studentID int) ([]client.AttendanceRecord, error)
	GradesByStudent(ctx context.Context, studentID int) ([]client.GradeRecord, error)
	ListNotices(ctx context.Context) ([]client.Notice, error)
	CreateNotice(ctx context.Context, in client.NoticeInput) error
	ListAssignments(ctx context.Context) ([]client.Assignment, error)
	GetAssignment(ctx context.Context, id int) (*client.Assignment, error)
	UploadSubmission(ctx context.Context, up client.SubmissionUpload) (*client.SubmissionResult, error)
	RequestFeeVoucher(ctx context.Context, voucher client.FeeVoucher, sendEmail bool, toEmail string) error
}

// RegisterPortalRoutes mounts the public and protected pages on app and
// returns the controller. Unknown paths are sent to the login view, so
// call it after any static handlers.
func RegisterPortalRoutes(app fiber.Router, opts ...PortalControllerOption) *PortalController {
	controller := NewPortalController(opts...)
	r := controller.Routes
	protected := controller.Guard.Protect()

	app.Get(r.Login, controller.LoginShow)
	app.Post(r.Login, controller.LoginPost)
	app.Get(r.Logout, controller.LogOut)
	app.Get(r.Register, controller.RegistrationShow)
	app.Post(r.Register, controller.RegistrationCreate)

	app.Get(r.Dashboard, protected, controller.Dashboard)

	app.Get(r.Profile, protected, controller.ProfileShow)
	app.Post(r.Profile, protected, controller.ProfileUpdate)
	app.Post(r.Profile+"/fee-voucher", protected, controller.FeeVoucherCreate)

	app.Get(r.Classes, protected, controller.ClassesIndex)
	app.Post(r.Classes+"/join", protected, controller.ClassJoin)
	app.Get(r.Classes+"/:id", protected, controller.ClassShow)

	app.Get(r.Attendance, protected, controller.AttendanceIndex)
	app.Get(r.Grades, protected, controller.GradesIndex)

	app.Get(r.Notices, protected, controller.NoticesIndex)
	app.Post(r.Notices, protected, controller.NoticeCreate)

	app.Get(r.Assignments, protected, controller.AssignmentsIndex)
	app.Get(r.Assignments+"/:id", protected, controller.AssignmentShow)
	app.Post(r.Assignments+"/:id/submission", protected, controller.SubmissionCreate)

	app.Use(controller.Fallback)

	return controller
}

type PortalControllerRoutes struct {
	Login       string
	Logout      string
	Register    string
	Dashboard   string
	Profile     string
	Classes     string
	Attendance  string
	Grades      string
	Notices     string
	Assignments string
}

type PortalControllerViews struct {
	Layout           string
	Login            string
	Register         string
	Dashboard        string
	Profile          string
	Classes          string
	ClassDetail      string
	Attendance       string
	Grades           string
	Notices          string
	Assignments      string
	AssignmentDetail string
	Error            string
}

type PortalController struct {
	Debug       bool
	Logger      Logger
	API         PortalAPI
	Auth        *AuthContext
	Guard       *RouteGuard
	Routes      *PortalControllerRoutes
	Views       *PortalControllerViews
	PhoneRegion string
	Now         func() time.Time
}

type PortalControllerOption func(*PortalController) *PortalController

func WithAPI(api PortalAPI) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		p.API = api
		return p
	}
}

func WithPortalAuth(ac *AuthContext) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		p.Auth = ac
		return p
	}
}

func WithRouteGuard(g *RouteGuard) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		p.Guard = g
		return p
	}
}

func WithControllerLogger(logger Logger) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		if logger != nil {
			p.Logger = logger
		}
		return p
	}
}

// WithDebug dumps form payloads and API answers to the debug log
func WithDebug(debug bool) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		p.Debug = debug
		return p
	}
}

func WithPhoneRegion(region string) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		p.PhoneRegion = region
		return p
	}
}

// WithPortalConfig applies the debug flag and phone region from cfg
func WithPortalConfig(cfg Config) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		if cfg == nil {
			return p
		}
		p.Debug = cfg.GetDebug()
		if region := cfg.GetPhoneRegion(); region != "" {
			p.PhoneRegion = region
		}
		return p
	}
}

func WithClock(now func() time.Time) PortalControllerOption {
	return func(p *PortalController) *PortalController {
		if now != nil {
			p.Now = now
		}
		return p
	}
}

func NewPortalController(opts ...PortalControllerOption) *PortalController {
	p := &PortalController{
		Logger:      defLogger{},
		PhoneRegion: "US",
		Now:         time.Now,
		Routes: &PortalControllerRoutes{
			Login:       "/login",
			Logout:      "/logout",
			Register:    "/register",
			Dashboard:   "/dashboard",
			Profile:     "/profile",
			Classes:     "/classes",
			Attendance:  "/attendance",
			Grades:      "/grades",
			Notices:     "/notices",
			Assignments: "/assignments",
		},
		Views: &PortalControllerViews{
			Layout:           "layouts/main",
			Login:            "login",
			Register:         "register",
			Dashboard:        "dashboard",
			Profile:          "profile",
			Classes:          "classes",
			ClassDetail:      "class_detail",
			Attendance:       "attendance",
			Grades:           "grades",
			Notices:          "notices",
			Assignments:      "assignments",
			AssignmentDetail: "assignment_detail",
			Error:            "errors/500",
		},
	}

	for _, opt := range opts {
		p = opt(p)
	}

	if p.API == nil {
		panic("Missing PortalAPI in portal controller...")
	}

	if p.Auth == nil {
		panic("Missing AuthContext in portal controller...")
	}

	if p.Guard == nil {
		p.Guard = NewRouteGuard(p.Auth, nil, WithGuardLogger(p.Logger))
	}

	return p
}

// HandleError is the fiber ErrorHandler. Authentication failures go back
// to the login page, everything else renders the error view with the
// status the error carries.
func (a *PortalController) HandleError(c *fiber.Ctx, err error) error {
	richErr := asRichError(err)

	a.Logger.Error("request failed",
		"path", c.Path(),
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
		"source", richErr.Source,
	)

	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return a.Guard.Deny(c)
	}

	code := richErr.Code
	if code < fiber.StatusBadRequest {
		code = fiber.StatusInternalServerError
	}

	c.Status(code)
	if rerr := a.render(c, a.Views.Error, fiber.Map{
		"status":  code,
		"message": richErr.Message,
	}); rerr != nil {
		return c.SendString(richErr.Message)
	}
	return nil
}

func asRichError(err error) *goerrors.Error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var fe *fiber.Error
	if goerrors.As(err, &fe) {
		richErr = goerrors.New(fe.Message, goerrors.HTTPStatusToCategory(fe.Code)).
			WithCode(fe.Code)
		richErr.Source = err
		return richErr
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
		WithCode(goerrors.CodeInternal)
}

// Fallback sends any unknown path to the login view
func (a *PortalController) Fallback(c *fiber.Ctx) error {
	return c.Redirect(a.Guard.LoginPath(), fiber.StatusFound)
}

func (a *PortalController) LoginShow(c *fiber.Ctx) error {
	if a.auth(c).IsAuthenticated() {
		return c.Redirect(a.Routes.Dashboard, fiber.StatusFound)
	}
	return a.render(c, a.Views.Login, fiber.Map{
		"errors": nil,
		"record": LoginPayload{},
	})
}

func (a *PortalController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.HandleError(c, fiber.NewError(fiber.StatusBadRequest, "Failed to parse form"))
	}

	if err := payload.Validate(); err != nil {
		return a.render(c, a.Views.Login, fiber.Map{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
			"error":      ValidationSummary(err, "username", "password"),
		})
	}

	if a.Debug {
		a.Logger.Debug("login payload", "payload", print.MaybePrettyJSON(fiber.Map{"username": payload.Username}))
	}

	token, err := a.API.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Info("login failed", "username", payload.Username, "error", err)

		message := client.Message(err, "Login failed.")
		if goerrors.Is(err, client.ErrTokenMissing) {
			message = "Token missing from response."
		}

		return a.render(c, a.Views.Login, fiber.Map{
			"record": LoginPayload{Username: payload.Username},
			"error":  message,
		})
	}

	a.auth(c).Login(token)

	redirect := a.Guard.GetRedirect(c)
	a.Logger.Debug("login succeeded", "redirect", redirect)

	return c.Redirect(redirect, fiber.StatusSeeOther)
}

func (a *PortalController) LogOut(c *fiber.Ctx) error {
	a.auth(c).Logout()
	return WithInfo(c, "You have been logged out.").Redirect(a.Guard.LoginPath(), fiber.StatusFound)
}

func (a *PortalController) RegistrationShow(c *fiber.Ctx) error {
	return a.render(c, a.Views.Register, fiber.Map{
		"record":  RegistrationPayload{},
		"genders": genderOptions,
	})
}

var genderOptions = []string{"Male", "Female", GenderOther}

var registrationFieldOrder = []string{
	"studentFirstName", "studentLastName", "studentId", "studentEmail",
	"dateOfBirth", "address", "city", "gender", "nationality", "phoneNo",
	"password", "confirmPassword", "otherGender",
}

func (a *PortalController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.HandleError(c, fiber.NewError(fiber.StatusBadRequest, "Failed to parse form"))
	}

	*payload = payload.WithPhoneRegion(a.PhoneRegion)

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("register validate payload", "error", err)
		return a.render(c, a.Views.Register, fiber.Map{
			"record":     a.maskRegistration(payload),
			"genders":    genderOptions,
			"validation": FormatValidationErrorToMap(err),
			"error":      ValidationSummary(err, registrationFieldOrder...),
		})
	}

	student := payload.Student()
	if a.Debug {
		masked := student
		masked.PasswordHash = ""
		a.Logger.Debug("register payload", "payload", print.MaybePrettyJSON(masked))
	}

	if err := a.API.RegisterStudent(c.UserContext(), student); err != nil {
		a.Logger.Error("register student", "error", err)
		return a.render(c, a.Views.Register, fiber.Map{
			"record":  a.maskRegistration(payload),
			"genders": genderOptions,
			"error":   client.Message(err, "Registration failed"),
		})
	}

	return WithSuccess(c, "Registration successful! Please log in.").
		Redirect(a.Guard.LoginPath(), fiber.StatusSeeOther)
}

func (a *PortalController) maskRegistration(p *RegistrationPayload) RegistrationPayload {
	out := *p
	out.Password = ""
	out.ConfirmPassword = ""
	return out
}

func (a *PortalController) Dashboard(c *fiber.Ctx) error {
	claims, id, err := a.identity(c)
	if err != nil {
		return a.render(c, a.Views.Dashboard, fiber.Map{"error": userMessage(err, "")})
	}

	data := fiber.Map{"claims": claims}

	student, err := a.API.GetStudent(c.UserContext(), id)
	if err != nil {
		a.Logger.Error("dashboard get student", "id", id, "error", err)
		data["error"] = client.Message(err, "Failed to load student details.")
		return a.render(c, a.Views.Dashboard, data)
	}

	a.dump("dashboard student", student)

	data["student"] = student
	data["full_name"] = student.FullName()
	return a.render(c, a.Views.Dashboard, data)
}

func (a *PortalController) ProfileShow(c *fiber.Ctx) error {
	_, id, err := a.identity(c)
	if err != nil {
		return a.render(c, a.Views.Profile, fiber.Map{"error": userMessage(err, "")})
	}

	student, err := a.API.GetStudent(c.UserContext(), id)
	if err != nil {
		a.Logger.Error("profile get student", "id", id, "error", err)
		return a.render(c, a.Views.Profile, fiber.Map{
			"error": client.Message(err, "Failed to load profile."),
		})
	}

	return a.render(c, a.Views.Profile, a.profileData(*student))
}

func (a *PortalController) profileData(student client.Student) fiber.Map {
	student.PasswordHash = ""
	return fiber.Map{
		"student":   student,
		"full_name": student.FullName(),
		"voucher":   client.NewFeeVoucher(student, a.Now()),
		"genders":   genderOptions,
	}
}

func (a *PortalController) ProfileUpdate(c *fiber.Ctx) error {
	_, id, err := a.identity(c)
	if err != nil {
		return WithError(c, userMessage(err, "")).Redirect(a.Routes.Profile, fiber.StatusSeeOther)
	}

	payload := new(ProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("profile parse payload", "error", err)
		return a.HandleError(c, fiber.NewError(fiber.StatusBadRequest, "Failed to parse form"))
	}

	*payload = payload.WithPhoneRegion(a.PhoneRegion)
	submitted := payload.Student(id)

	if err := payload.Validate(); err != nil {
		data := a.profileData(submitted)
		data["validation"] = FormatValidationErrorToMap(err)
		data["error"] = ValidationSummary(err, "studentFirstName", "studentLastName", "studentId", "studentEmail", "phoneNo")
		data["editing"] = true
		return a.render(c, a.Views.Profile, data)
	}

	updated, err := a.API.UpdateStudent(c.UserContext(), id, submitted)
	if err != nil {
		a.Logger.Error("profile update", "id", id, "error", err)
		data := a.profileData(submitted)
		data["error"] = "Failed to update profile: " + client.Message(err, err.Error())
		data["editing"] = true
		return a.render(c, a.Views.Profile, data)
	}

	a.dump("profile updated", updated)

	return WithSuccess(c, "Profile updated successfully.").Redirect(a.Routes.Profile, fiber.StatusSeeOther)
}

func (a *PortalController) FeeVoucherCreate(c *fiber.Ctx) error {
	payload := new(FeeVoucherPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("fee voucher parse payload", "error", err)
		return a.HandleError(c, fiber.NewError(fiber.StatusBadRequest, "Failed to parse form"))
	}

	if err := payload.Validate(); err != nil {
		return WithError(c, "Failed to generate voucher: "+ValidationSummary(err, "studentEmail", "studentId", "amount")).
			Redirect(a.Routes.Profile, fiber.StatusSeeOther)
	}

	voucher := payload.Voucher(client.NewFeeVoucher(client.Student{}, a.Now()))
	a.dump("fee voucher", voucher)

	if err := a.API.RequestFeeVoucher(c.UserContext(), voucher, true, voucher.StudentEmail); err != nil {
		a.Logger.Error("fee voucher request", "error", err)
		return WithError(c, "Failed to generate voucher: "+client.Message(err, err.Error())).
			Redirect(a.Routes.Profile, fiber.StatusSeeOther)
	}

	return WithSuccess(c, "Fee voucher requested successfully.").Redirect(a.Routes.Profile, fiber.StatusSeeOther)
}

func (a *PortalController) ClassesIndex(c *fiber.Ctx) error {
	classrooms, err := a.API.ListClassrooms(c.UserContext())
	if err != nil {
		a.Logger.Error("list classrooms", "error", err)
		return a.render(c, a.Views.Classes, fiber.Map{
			"classrooms": []client.Classroom{},
			"error":      client.Message(err, "Failed to fetch classrooms"),
		})
	}

	return a.render(c, a.Views.Classes, fiber.Map{
		"classrooms": classrooms,
	})
}

func (a *PortalController) ClassShow(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return WithError(c, "Failed to fetch class details").Redirect(a.Routes.Classes, fiber.StatusFound)
	}

	classroom, err := a.API.GetClassroom(c.UserContext(), id)
	if err != nil {
		a.Logger.Error("get classroom", "id", id, "error", err)
		return WithError(c, "Failed to fetch class details").Redirect(a.Routes.Classes, fiber.StatusFound)
	}

	return a.render(c, a.Views.ClassDetail, fiber.Map{
		"classroom": classroom,
	})
}

// ClassJoin confirms a join request. Nothing is sent to the API.
func (a *PortalController) ClassJoin(c *fiber.Ctx) error {
	payload := new(JoinClassPayload)
	if err := c.BodyParser(payload); err != nil {
		return a.HandleError(c, fiber.NewError(fiber.StatusBadRequest, "Failed to parse form"))
	}

	if err := payload.Validate(); err != nil {
		return WithError(c, ValidationSummary(err, "subject")).Redirect(a.Routes.Classes, fiber.StatusSeeOther)
	}

	teacher := ""
	if classrooms, err := a.API.ListClassrooms(c.UserContext()); err == nil {
		for _, cr := range classrooms {
			if cr.ClassName == payload.Subject {
				teacher = cr.TeacherName
				break
			}
		}
	}

	return WithSuccess(c, fmt.Sprintf("You have successfully joined %s with %s", payload.Subject, teacher)).
		Redirect(a.Routes.Classes, fiber.StatusSeeOther)
}

func (a *PortalController) AttendanceIndex(c *fiber.Ctx) error {
	months := monthOptions(a.Now(), 6)
	month := c.Query("month", months[0])

	data := fiber.Map{
		"months":  months,
		"month":   month,
		"records": []client.AttendanceRecord{},
		"summary": SummarizeAttendance(nil),
	}

	_, id, err := a.identity(c)
	if err != nil {
		data["error"] = userMessage(err, "")
		return a.render(c, a.Views.Attendance, data)
	}

	records, err := a.API.AttendanceByStudent(c.UserContext(), id)
	if err != nil {
		a.Logger.Error("attendance by student", "id", id, "error", err)
		data["error"] = client.Message(err, "Failed to fetch attendance records")
		return a.render(c, a.Views.Attendance, data)
	}

	data["records"] = records
	data["summary"] = SummarizeAttendance(records)
	return a.render(c, a.Views.Attendance, data)
}

// monthOptions lists n month labels ending with the month of now
func monthOptions(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, -i, 0).Format("January 2006"))
	}
	return out
}

func (a *PortalController) GradesIndex(c *fiber.Ctx) error {
	filter := c.Query("exam", AllExams)

	data := fiber.Map{
		"filter":  filter,
		"options": ExamOptions,
		"rows":    []GradeRow{},
		"average": AverageLabel(nil),
		"empty":   true,
	}

	_, id, err := a.identity(c)
	if err != nil {
		data["error"] = userMessage(err, "")
		return a.render(c, a.Views.Grades, data)
	}

	records, err := a.API.GradesByStudent(c.UserContext(), id)
	if err != nil {
		a.Logger.Error("grades by student", "id", id, "error", err)
		data["error"] = client.Message(err, "Failed to fetch grade records")
		return a.render(c, a.Views.Grades, data)
	}

	rows := FilterGrades(GradeRows(records), filter)
	data["rows"] = rows
	data["average"] = AverageLabel(rows)
	data["empty"] = len(records) == 0

	return a.render(c, a.Views.Grades, data)
}

func (a *PortalController) NoticesIndex(c *fiber.Ctx) error {
	notices, err := a.API.ListNotices(c.UserContext())
	if err != nil {
		a.Logger.Error("list notices", "error", err)
		return a.render(c, a.Views.Notices, fiber.Map{
			"notices": []client.Notice{},
			"error":   client.Message(err, "Failed to fetch notices"),
		})
	}

	return a.render(c, a.Views.Notices, fiber.Map{
		"notices": notices,
	})
}

func (a *PortalController) NoticeCreate(c *fiber.Ctx) error {
	payload := new(NoticePayload)
	if err := c.BodyParser(payload); err != nil {
		return a.HandleError(c, fiber.NewError(fiber.StatusBadRequest, "Failed to parse form"))
	}

	if err := payload.Validate(); err != nil {
		return WithError(c, ValidationSummary(err, "title", "noticeDate")).Redirect(a.Routes.Notices, fiber.StatusSeeOther)
	}

	if err := a.API.CreateNotice(c.UserContext(), payload.Input()); err != nil {
		a.Logger.Error("create notice", "error", err)
		return WithError(c, client.Message(err, err.Error())).Redirect(a.Routes.Notices, fiber.StatusSeeOther)
	}

	return WithSuccess(c, "Notice posted.").Redirect(a.Routes.Notices, fiber.StatusSeeOther)
}

// assignmentView is an assignment shaped for the templates
type assignmentView struct {
	ID            int
	Title         string
	Description   string
	ClassroomName string
	DueDay        string
	Submitted     bool
	FileURL       string
}

func (a *PortalController) assignmentView(as client.Assignment) assignmentView {
	v := assignmentView{
		ID:            as.ID,
		Title:         as.Title,
		Description:   as.Description,
		ClassroomName: as.ClassroomName,
		DueDay:        as.DueDay(),
		Submitted:     as.Submitted(),
	}
	if fu, ok := a.API.(interface{ FileURL(string) string }); ok && as.FilePath != "" {
		v.FileURL = fu.FileURL(as.FilePath)
	}
	return v
}

func (a *PortalController) AssignmentsIndex(c *fiber.Ctx) error {
	assignments, err := a.API.ListAssignments(c.UserContext())
	if err != nil {
		a.Logger.Error("list assignments", "error", err)
		return a.render(c, a.Views.Assignments, fiber.Map{
			"assignments": []assignmentView{},
			"error":       client.Message(err, "Failed to fetch assignments"),
		})
	}

	views := make([]assignmentView, 0, len(assignments))
	for _, as := range assignments {
		views = append(views, a.assignmentView(as))
	}

	return a.render(c, a.Views.Assignments, fiber.Map{
		"assignments": views,
	})
}

func (a *PortalController) AssignmentShow(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return WithError(c, "Failed to load assignment details").Redirect(a.Routes.Assignments, fiber.StatusFound)
	}

	assignment, err := a.API.GetAssignment(c.UserContext(), id)
	if err != nil {
		a.Logger.Error("get assignment", "id", id, "error", err)
		return WithError(c, "Failed to load assignment details").Redirect(a.Routes.Assignments, fiber.StatusFound)
	}

	return a.render(c, a.Views.AssignmentDetail, fiber.Map{
		"assignment": a.assignmentView(*assignment),
	})
}

func (a *PortalController) SubmissionCreate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return WithError(c, "Upload failed!").Redirect(a.Routes.Assignments, fiber.StatusSeeOther)
	}
	back := fmt.Sprintf("%s/%d", a.Routes.Assignments, id)

	claims, studentID, err := a.identity(c)
	if err != nil {
		return WithError(c, userMessage(err, "")).Redirect(back, fiber.StatusSeeOther)
	}

	payload := &SubmissionPayload{AssignmentTitle: c.FormValue("assignmentTitle")}
	if fh, err := c.FormFile("file"); err == nil {
		payload.File = fh
	}

	if err := payload.Validate(); err != nil {
		return WithError(c, ValidationSummary(err, "file")).Redirect(back, fiber.StatusSeeOther)
	}

	f, err := payload.File.Open()
	if err != nil {
		a.Logger.Error("open submission", "error", err)
		return WithError(c, "Upload failed!").Redirect(back, fiber.StatusSeeOther)
	}
	defer f.Close()

	result, err := a.API.UploadSubmission(c.UserContext(), client.SubmissionUpload{
		StudentID:        studentID,
		AssignmentID:     id,
		AssignmentTitle:  payload.AssignmentTitle,
		StudentFirstName: claims.FirstName,
		StudentLastName:  claims.LastName,
		SubmittedOn:      a.Now(),
		FileName:         payload.File.Filename,
		File:             f,
	})
	if err != nil {
		a.Logger.Error("upload submission", "assignment", id, "error", err)
		return WithError(c, "Upload failed! "+client.Message(err, "")).Redirect(back, fiber.StatusSeeOther)
	}

	a.Logger.Info("submission uploaded", "assignment", id, "path", result.Path())

	return WithSuccess(c, "Assignment uploaded successfully!").Redirect(a.Routes.Assignments, fiber.StatusSeeOther)
}

// auth prefers the AuthContext provided on the request
func (a *PortalController) auth(c *fiber.Ctx) *AuthContext {
	if ac, ok := GetAuthContext(c); ok {
		return ac
	}
	return a.Auth
}

// identity returns the claims and numeric student id of the stored
// credential, or ErrNoIdentity
func (a *PortalController) identity(c *fiber.Ctx) (Claims, int, error) {
	claims, ok := a.auth(c).Identity()
	if !ok {
		return Claims{}, 0, ErrNoIdentity
	}

	id, ok := claims.StudentID()
	if !ok {
		a.Logger.Debug("credential subject is not numeric", "subject", claims.SubjectID)
		return claims, 0, ErrNoIdentity
	}

	return claims, id, nil
}

func (a *PortalController) render(c *fiber.Ctx, view string, data fiber.Map) error {
	return c.Render(view, MergeTemplateData(c, a.auth(c), data), a.Views.Layout)
}

func (a *PortalController) dump(label string, v any) {
	if !a.Debug {
		return
	}
	a.Logger.Debug(label, "payload", print.MaybePrettyJSON(v))
}
