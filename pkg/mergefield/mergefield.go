package mergefield

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Candidate holds the candidate fields available to merge tokens.
type Candidate struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	CurrentTitle   string
	CurrentCompany string
	LinkedinURL    string
}

// Application holds the application fields available to merge tokens.
type Application struct {
	JobTitle  string
	Status    string
	Source    string
	AppliedAt time.Time
}

// Company holds the company fields available to merge tokens.
type Company struct {
	Name     string
	Website  string
	Location string
}

// Submitter identifies the user who submitted the send.
type Submitter struct {
	FirstName string
	LastName  string
	Email     string
	Title     string
}

// Data is the ephemeral input bag a single render call resolves against.
// All object references are optional; a missing object resolves its
// registered fields to empty strings.
type Data struct {
	Candidate   *Candidate
	Application *Application
	Company     *Company
	Submitter   *Submitter

	// Custom maps literal token keys to values, e.g. {"jobBoard": "..."}.
	Custom map[string]string

	// Now overrides the clock for the common namespace. Zero means time.Now.
	Now time.Time
}

var tokenRe = regexp.MustCompile(`\{\{\s*([^{}\s][^{}]*?)\s*\}\}`)

// Render substitutes every registered merge token in content with its value.
// Missing values become empty strings; unregistered tokens are left as
// literal text. Render never fails.
func Render(content string, data Data) string {
	return tokenRe.ReplaceAllStringFunc(content, func(match string) string {
		sub := tokenRe.FindStringSubmatch(match)
		token := sub[1]
		if value, ok := resolve(token, data); ok {
			return value
		}
		return match
	})
}

// ValidationResult reports the outcome of a Validate call.
type ValidationResult struct {
	// InvalidFields lists tokens not present on the registered catalogue,
	// in order of first appearance.
	InvalidFields []string
	Valid         bool
}

// Validate extracts every {{...}} token from content and reports the ones
// that are not registered. Custom fields are open-ended and cannot be
// validated statically, so they are reported as invalid here.
func Validate(content string) ValidationResult {
	seen := make(map[string]struct{})
	var invalid []string

	for _, sub := range tokenRe.FindAllStringSubmatch(content, -1) {
		token := sub[1]
		namespace, field, ok := splitToken(token)
		if ok && isRegistered(namespace, field) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		invalid = append(invalid, token)
	}

	return ValidationResult{
		Valid:         len(invalid) == 0,
		InvalidFields: invalid,
	}
}

// resolve maps a token to its value. The boolean reports whether the token
// is recognized at all; recognized tokens with absent data resolve to "".
func resolve(token string, data Data) (string, bool) {
	// Custom keys are matched literally and take precedence over the
	// namespace catalogue.
	if value, ok := data.Custom[token]; ok {
		return value, true
	}

	namespace, field, ok := splitToken(token)
	if !ok || !isRegistered(namespace, field) {
		return "", false
	}

	switch namespace {
	case NamespaceCandidate:
		return candidateField(data.Candidate, field), true
	case NamespaceApplication:
		return applicationField(data.Application, field), true
	case NamespaceCompany:
		return companyField(data.Company, field), true
	case NamespaceSubmitter:
		return submitterField(data.Submitter, field), true
	case NamespaceCommon:
		return commonField(field, data.Now), true
	}
	return "", false
}

func splitToken(token string) (namespace, field string, ok bool) {
	namespace, field, found := strings.Cut(token, ".")
	if !found || namespace == "" || field == "" {
		return "", "", false
	}
	return namespace, field, true
}

func candidateField(c *Candidate, field string) string {
	if c == nil {
		return ""
	}
	switch field {
	case "firstName":
		return c.FirstName
	case "lastName":
		return c.LastName
	case "fullName":
		return fullName(c.FirstName, c.LastName)
	case "email":
		return c.Email
	case "phone":
		return c.Phone
	case "currentTitle":
		return c.CurrentTitle
	case "currentCompany":
		return c.CurrentCompany
	case "linkedinUrl":
		return c.LinkedinURL
	}
	return ""
}

func applicationField(a *Application, field string) string {
	if a == nil {
		return ""
	}
	switch field {
	case "jobTitle":
		return a.JobTitle
	case "status":
		return a.Status
	case "source":
		return a.Source
	case "appliedDate":
		if a.AppliedAt.IsZero() {
			return ""
		}
		return a.AppliedAt.Format("January 2, 2006")
	}
	return ""
}

func companyField(c *Company, field string) string {
	if c == nil {
		return ""
	}
	switch field {
	case "name":
		return c.Name
	case "website":
		return c.Website
	case "location":
		return c.Location
	}
	return ""
}

func submitterField(s *Submitter, field string) string {
	if s == nil {
		return ""
	}
	switch field {
	case "firstName":
		return s.FirstName
	case "lastName":
		return s.LastName
	case "fullName":
		return fullName(s.FirstName, s.LastName)
	case "email":
		return s.Email
	case "title":
		return s.Title
	}
	return ""
}

func commonField(field string, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	switch field {
	case "currentDate":
		return now.Format("January 2, 2006")
	case "currentYear":
		return strconv.Itoa(now.Year())
	}
	return ""
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
