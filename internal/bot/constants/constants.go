package constants

// Component custom IDs recognized by the interaction handlers.
const (
	NonMemberVerificationButtonID = "non_member_verification"
	MemberVerificationButtonID    = "member_verification"
	VerificationModalID           = "verification_modal"
	UsernameInputID               = "username_input"
	ScreenshotInputID             = "screenshot_input"
	AcceptMembershipButtonID      = "accept_membership_request"
	DenyMembershipButtonID        = "deny_membership_request"
)

// Embed titles. The prompt title doubles as the marker used to detect an
// existing prompt post in channel history.
const (
	VerifyPromptTitle  = "Server Membership Verification"
	ReviewRequestTitle = "New membership verification request."
)

// Embed accent colors.
const (
	VerifyPromptColor  = 0xE67E22
	ReviewRequestColor = 0x95A5A6
)

// PromptScanLimit is how many recent messages are checked for an existing
// verification prompt before posting a new one.
const PromptScanLimit = 10
