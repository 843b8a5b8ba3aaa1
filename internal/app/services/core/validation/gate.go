package validation

// Decision is the gate's tagged outcome. The delivery layer maps each variant
// to a transport response; nothing downstream inspects error types.
type Decision string

const (
	// DecisionAdmit admits with zero findings and fresh entities throughout.
	DecisionAdmit Decision = "admit"
	// DecisionAdmitWithReuse admits, attaching the resolved existing records
	// instead of creating duplicates.
	DecisionAdmitWithReuse Decision = "admit_with_reuse"
	// DecisionBlock rejects on at least one error finding. Nothing is
	// persisted, nothing is enqueued.
	DecisionBlock Decision = "block"
	// DecisionRequiresConfirmation rejects on warnings only. The caller must
	// resubmit with confirm=true.
	DecisionRequiresConfirmation Decision = "requires_confirmation"
)

// Decide converts an aggregated result into one outcome. Any error overrides
// any number of warnings; admission requires zero findings.
func Decide(result *ValidationResult, confirm bool) Decision {
	if result.HasErrors() {
		return DecisionBlock
	}
	if result.HasWarnings() && !confirm {
		return DecisionRequiresConfirmation
	}
	if result.ReusableProvider != nil || result.ReusablePatient != nil {
		return DecisionAdmitWithReuse
	}
	return DecisionAdmit
}
