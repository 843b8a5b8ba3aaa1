package constvars

const (
	CarePlanSubmittedSuccessMessage     = "care plan request admitted"
	CarePlanNeedsConfirmationMessage    = "care plan request needs confirmation"
	CarePlanStatusFetchedSuccessMessage = "care plan status fetched"
	CarePlanStatsFetchedSuccessMessage  = "care plan stats fetched"
)
