package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/schedulink/schedulink/core/report"
	"github.com/schedulink/schedulink/core/user"
)

func newReportUpload(t *testing.T, token, title, fileName, contentType, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", title); err != nil {
		t.Fatalf("writing title field: %v", err)
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("creating file part: %v", err)
	}
	if _, err = part.Write([]byte(content)); err != nil {
		t.Fatalf("writing file part: %v", err)
	}
	if err = mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func Test_reportApi_create(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})

	pdf := "%PDF-1.4 attendance summary"

	tests := []struct {
		httpTest
		title, fileName, contentType, content string
	}{
		{
			httpTest: httpTest{
				name: "staff required", token: getToken(t, student),
				wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
			},
			title: "Q3 Attendance", fileName: "q3.pdf", contentType: "application/pdf", content: pdf,
		},
		{
			httpTest: httpTest{
				name: "title required", token: getToken(t, staff), wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
			},
			fileName: "q3.pdf", contentType: "application/pdf", content: pdf,
		},
		{
			httpTest: httpTest{
				name: "only PDFs", token: getToken(t, staff), wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"file": "only PDF files are accepted"}),
			},
			title: "Q3 Attendance", fileName: "q3.csv", contentType: "text/csv", content: "a,b,c",
		},
		{
			httpTest: httpTest{name: "upload", token: getToken(t, staff), wantCode: http.StatusCreated},
			title:    "Q3 Attendance", fileName: "q3.pdf", contentType: "application/pdf", content: pdf,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newReportUpload(t, tt.token, tt.title, tt.fileName, tt.contentType, tt.content)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt.httpTest, rec)

			if tt.wantCode == http.StatusCreated {
				var rep report.Report
				if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
					t.Fatalf("unmarshalling Report: %v", err)
				}
				if rep.FileName != tt.fileName {
					t.Errorf("report file name = %q; want %q", rep.FileName, tt.fileName)
				}
				if rep.Size != int64(len(tt.content)) {
					t.Errorf("report size = %d; want %d", rep.Size, len(tt.content))
				}
				if rep.UploadedBy != staff.ID {
					t.Errorf("report uploadedBy = %d; want %d", rep.UploadedBy, staff.ID)
				}
			}
		})
	}
}

func Test_reportApi_download(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})

	pdf := "%PDF-1.4 attendance summary"
	rep, err := ta.repSvc.Create(
		context.Background(), report.NewReport{Title: "Q3 Attendance"},
		"q3.pdf", "application/pdf", int64(len(pdf)), strings.NewReader(pdf), staff.ID,
	)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	path := fmt.Sprintf("/v1/reports/%d/download", rep.ID)

	tests := []httpTest{
		{
			name: "staff required", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "download", token: getToken(t, staff), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, path, tt.token)
			ta.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v", rec.Code, tt.wantCode)
			}

			if tt.wantCode == http.StatusOK {
				if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "q3.pdf") {
					t.Errorf("Content-Disposition = %q; want the original file name", cd)
				}
				if got := rec.Body.String(); got != pdf {
					t.Errorf("body = %q; want the stored file content", got)
				}
			}
		})
	}
}

func Test_reportApi_destroy(t *testing.T) {
	ta := setup(t)

	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	admin := createUser(t, ta, "Admin", "adminuser", "admin@test.cd", "pwd", []string{user.RoleAdmin})

	pdf := "%PDF-1.4 attendance summary"
	rep, err := ta.repSvc.Create(
		context.Background(), report.NewReport{Title: "Q3 Attendance"},
		"q3.pdf", "application/pdf", int64(len(pdf)), strings.NewReader(pdf), staff.ID,
	)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	path := fmt.Sprintf("/v1/reports/%d", rep.ID)

	tests := []httpTest{
		{
			name: "admin required", token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "destroy", token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, path, tt.token)
			ta.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
		})
	}

	if _, err = ta.repSvc.GetByID(context.Background(), rep.ID); err == nil {
		t.Error("report should be gone")
	}
}
