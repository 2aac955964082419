// Package mergefield resolves {{namespace.field}} placeholder tokens in email
// content against structured recruiting data.
//
// Rendering never fails: a recognized token whose source object or field is
// missing becomes an empty string, and a token that is not on the registered
// catalogue is left in the output as literal text. Use Validate to check
// authored content against the catalogue before saving a template.
//
//	out := mergefield.Render("Hi {{candidate.firstName}}", mergefield.Data{
//	    Candidate: &mergefield.Candidate{FirstName: "Ann"},
//	})
//	// out == "Hi Ann"
//
// Custom fields are matched literally by key:
//
//	mergefield.Render("{{jobBoard}}", mergefield.Data{
//	    Custom: map[string]string{"jobBoard": "WorkWithUs"},
//	})
package mergefield
