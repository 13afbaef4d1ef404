package core

type ErrorNotFound struct {
}

func (e ErrorNotFound) Error() string {
	return "Not Found"
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

type ErrorAlreadyExists struct {
}

func (e ErrorAlreadyExists) Error() string {
	return "Already Exists"
}

func NewErrorAlreadyExists() ErrorAlreadyExists {
	return ErrorAlreadyExists{}
}

type ErrorPermissionDenied struct {
}

func (e ErrorPermissionDenied) Error() string {
	return "Permission Denied"
}

func NewErrorPermissionDenied() ErrorPermissionDenied {
	return ErrorPermissionDenied{}
}

type ErrorRateLimited struct {
	RetryAfterSeconds int
}

func (e ErrorRateLimited) Error() string {
	return "Rate Limited"
}

func NewErrorRateLimited(retryAfterSeconds int) ErrorRateLimited {
	return ErrorRateLimited{RetryAfterSeconds: retryAfterSeconds}
}

type ErrorInvalidSignature struct {
}

func (e ErrorInvalidSignature) Error() string {
	return "Invalid Signature"
}

func NewErrorInvalidSignature() ErrorInvalidSignature {
	return ErrorInvalidSignature{}
}

type ErrorMalformedEnvelope struct {
	Reason string
}

func (e ErrorMalformedEnvelope) Error() string {
	if e.Reason == "" {
		return "Malformed Envelope"
	}
	return "Malformed Envelope: " + e.Reason
}

func NewErrorMalformedEnvelope(reason string) ErrorMalformedEnvelope {
	return ErrorMalformedEnvelope{Reason: reason}
}
