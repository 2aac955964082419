package mergefield

// Merge field namespaces.
const (
	NamespaceCandidate   = "candidate"
	NamespaceApplication = "application"
	NamespaceCompany     = "company"
	NamespaceSubmitter   = "submitter"
	NamespaceCommon      = "common"
)

// catalogue is the full set of registered fields per namespace.
// Validate checks tokens against this set; custom fields are open-ended
// and therefore not part of the catalogue.
var catalogue = map[string][]string{
	NamespaceCandidate: {
		"firstName",
		"lastName",
		"fullName",
		"email",
		"phone",
		"currentTitle",
		"currentCompany",
		"linkedinUrl",
	},
	NamespaceApplication: {
		"jobTitle",
		"status",
		"source",
		"appliedDate",
	},
	NamespaceCompany: {
		"name",
		"website",
		"location",
	},
	NamespaceSubmitter: {
		"firstName",
		"lastName",
		"fullName",
		"email",
		"title",
	},
	NamespaceCommon: {
		"currentDate",
		"currentYear",
	},
}

// AvailableFields returns the registered fields grouped by namespace.
// Callers use this to drive authoring UIs and validation.
func AvailableFields() map[string][]string {
	out := make(map[string][]string, len(catalogue))
	for ns, fields := range catalogue {
		out[ns] = append([]string(nil), fields...)
	}
	return out
}

func isRegistered(namespace, field string) bool {
	for _, f := range catalogue[namespace] {
		if f == field {
			return true
		}
	}
	return false
}
