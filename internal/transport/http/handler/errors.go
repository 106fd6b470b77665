package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid email or password"
	errOAuthAccount       = "This account uses Google sign-in"
	errUserExists         = "An account with this email already exists"
	errAlreadyVerified    = "Email is already verified"
	errNoCodeIssued       = "No verification code has been issued"
	errCodeExpired        = "Verification code has expired"
	errCodeMismatch       = "Invalid verification code"
	errCodeShape          = "Verification code must be exactly 6 digits"
	errUserNotFound       = "Account not found"
	errDeliveryFailed     = "Could not send the verification email"
	errUnauthenticated    = "Authentication required"
	errInvalidOAuthState  = "OAuth state mismatch"
	errInvalidOAuthCode   = "OAuth sign-in failed"
	errWalletNotFound     = "Wallet not found"
	errBackupNotFound     = "Backup wallet not found"
	errTxNotFound         = "Transaction not found"
	errTicketNotFound     = "Support ticket not found"
	errPackageNotFound    = "Trading package not found"
	errAmountOutOfRange   = "Amount is outside the package limits"
	errInsufficientFunds  = "Insufficient balance"
	errPasswordPolicy     = "Password must be at least 8 characters with uppercase, lowercase, number and special character (@$!%*?&)"
)
