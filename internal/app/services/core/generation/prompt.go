package generation

import (
	"careplan-service/internal/app/models"
	"fmt"
	"strings"
)

// BuildPrompt renders the generation prompt from the fields captured on the
// job at admission. Output is deterministic for a given job so retries send
// an identical request.
func BuildPrompt(job *models.CarePlanJob) string {
	var b strings.Builder

	b.WriteString("You are a clinical pharmacist creating a pharmacy care plan for a specialty medication patient.\n\n")
	b.WriteString("PATIENT INFORMATION\n")
	fmt.Fprintf(&b, "Name: %s %s\n", job.PatientFirstName, job.PatientLastName)
	fmt.Fprintf(&b, "Date of Birth: %s\n", job.PatientDOB.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "MRN: %s\n", job.PatientMRN)
	fmt.Fprintf(&b, "Referring Provider: %s (NPI %s)\n", job.ReferringProvider, job.ReferringNPI)
	fmt.Fprintf(&b, "Medication: %s\n", job.MedicationName)
	fmt.Fprintf(&b, "Primary Diagnosis: %s\n", job.PrimaryDiagnosis)
	if job.AdditionalDiagnosis != "" {
		fmt.Fprintf(&b, "Additional Diagnoses: %s\n", job.AdditionalDiagnosis)
	}
	if job.MedicationHistory != "" {
		fmt.Fprintf(&b, "Medication History: %s\n", job.MedicationHistory)
	}
	if job.ClinicalNotes != "" {
		fmt.Fprintf(&b, "Clinical Notes: %s\n", job.ClinicalNotes)
	}

	b.WriteString("\nProduce a care plan with exactly these four sections:\n")
	b.WriteString("1. DRUG THERAPY PROBLEMS: identified or potential drug therapy problems.\n")
	b.WriteString("2. SMART GOALS: specific, measurable, achievable, relevant, time-bound therapy goals.\n")
	b.WriteString("3. INTERVENTIONS: pharmacist interventions and patient counseling points.\n")
	b.WriteString("4. MONITORING PLAN: parameters, frequency, and escalation criteria.\n")
	b.WriteString("\nUse plain text with numbered items under each section header.\n")

	return b.String()
}
