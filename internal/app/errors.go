package app

import "errors"

// Error taxonomy of the generation and export flows. The HTTP layer maps
// each sentinel to a status code; messages are user-facing and localized.
var (
	// ErrValidation marks a bad request shape; the caller must fix the form.
	ErrValidation = errors.New("parametrii obligatorii lipsesc")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("email sau parolă incorectă")
	// ErrEmailTaken marks a duplicate registration attempt.
	ErrEmailTaken = errors.New("există deja un cont cu acest email")
	// ErrAuthentication marks a missing or unresolvable session token.
	ErrAuthentication = errors.New("token invalid sau expirat")
	// ErrProfileNotFound marks a missing profile row; transient, retry-worthy.
	ErrProfileNotFound = errors.New("profilul utilizatorului nu a fost găsit")
	// ErrQuotaExceeded marks the materials limit being reached.
	ErrQuotaExceeded = errors.New("ai atins limita de materiale pentru contul gratuit. Upgrade la Premium pentru materiale nelimitate!")
	// ErrMaterialNotFound marks a missing material record.
	ErrMaterialNotFound = errors.New("materialul nu a fost găsit")
	// ErrForbidden marks an ownership or role check failure.
	ErrForbidden = errors.New("nu ai permisiuni pentru această operațiune")
	// ErrAlreadyAdmin marks a duplicate admin promotion.
	ErrAlreadyAdmin = errors.New("utilizatorul este deja administrator")
	// ErrGenerationService marks an upstream generation failure; retry-worthy.
	ErrGenerationService = errors.New("eroare la serviciul de generare")
	// ErrGenerationTimeout marks the generation call exceeding its deadline.
	ErrGenerationTimeout = errors.New("serviciul de generare nu a răspuns la timp")
	// ErrPersistence marks a store write failure after a successful AI call.
	ErrPersistence = errors.New("eroare la salvarea materialului")
	// ErrExportStorage marks an export upload failure.
	ErrExportStorage = errors.New("eroare la încărcarea fișierului")
	// ErrExportMetadata marks the download-URL update failure; the uploaded
	// object is orphaned, not cleaned up.
	ErrExportMetadata = errors.New("eroare la actualizarea materialului")
)
