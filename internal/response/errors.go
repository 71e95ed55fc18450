package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Workspace / Session ───────────────────────────────────────────
	ErrWorkspaceNotFound ErrCode = "WORKSPACE_NOT_FOUND"
	ErrInvalidMode       ErrCode = "INVALID_MODE"
	ErrNoActiveSession   ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionCreate     ErrCode = "SESSION_CREATE_FAILED"

	// ─── Dialogue ──────────────────────────────────────────────────────
	ErrEmptyMessage      ErrCode = "EMPTY_MESSAGE"
	ErrOperationInFlight ErrCode = "OPERATION_IN_FLIGHT"
	ErrNoPendingQuestion ErrCode = "NO_PENDING_QUESTION"
	ErrQuestionNotFound  ErrCode = "QUESTION_NOT_FOUND"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUploadInFlight  ErrCode = "UPLOAD_IN_FLIGHT"
	ErrUploadFailed    ErrCode = "UPLOAD_FAILED"

	// ─── Tutor service ─────────────────────────────────────────────────
	ErrTutorUnavailable ErrCode = "TUTOR_UNAVAILABLE"
	ErrInvalidTutorBody ErrCode = "INVALID_SERVER_RESPONSE"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Workspace / Session ───────────────────────────────────────────
	case ErrWorkspaceNotFound:
		return "Espace de travail introuvable."
	case ErrInvalidMode:
		return "Mode d'apprentissage inconnu."
	case ErrNoActiveSession:
		return "Aucune session active. Sélectionne d'abord un mode."
	case ErrSessionCreate:
		return "Impossible de créer la session."

	// ─── Dialogue ──────────────────────────────────────────────────────
	case ErrEmptyMessage:
		return "Le message est vide."
	case ErrOperationInFlight:
		return "Une réponse est déjà en cours. Attends un instant."
	case ErrNoPendingQuestion:
		return "Aucune question active."
	case ErrQuestionNotFound:
		return "Question introuvable."

	// ─── Upload ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Un fichier est requis."
	case ErrUnsupportedFile:
		return "Type de fichier non supporté pour ce mode."
	case ErrFileTooLarge:
		return "Le fichier dépasse la taille maximale autorisée."
	case ErrUploadInFlight:
		return "Un upload est déjà en cours pour cette session."
	case ErrUploadFailed:
		return "Échec de l'upload."

	// ─── Tutor service ─────────────────────────────────────────────────
	case ErrTutorUnavailable:
		return "Le service d'analyse est momentanément indisponible."
	case ErrInvalidTutorBody:
		return "Réponse du serveur invalide."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation échouée. Vérifie les champs saisis."
	case ErrInvalidID:
		return "Format d'identifiant invalide."
	case ErrInvalidPayload:
		return "Corps de requête invalide."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Trop de requêtes. Réessaie dans un instant."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Une erreur interne est survenue."
	default:
		return "Une erreur inattendue est survenue."
	}
}
