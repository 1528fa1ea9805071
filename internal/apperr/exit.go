package apperr

import "errors"

// Process exit codes
const (
	ExitSuccess        = 0
	ExitUnexpected     = 1
	ExitAuthentication = 2
	ExitNetwork        = 3
	ExitValidation     = 4
	ExitPartialFailure = 5
)

// ExitCode maps a kind to its process exit code
func ExitCode(kind Kind) int {
	switch kind {
	case KindAuthentication:
		return ExitAuthentication
	case KindNetwork, KindRemoteConfig:
		return ExitNetwork
	case KindValidation, KindLocalConfig:
		return ExitValidation
	case KindStageAggregate, KindPartialDeployment:
		return ExitPartialFailure
	default:
		return ExitUnexpected
	}
}

// ExitCodeFor classifies err and returns its exit code. A remote retrieval
// failure caused by rejected credentials exits as an authentication failure.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	kind := Classify(err)
	if kind == KindRemoteConfig {
		var ae *Error
		if errors.As(err, &ae) && ae.Err != nil && Classify(ae.Err) == KindAuthentication {
			return ExitAuthentication
		}
	}
	return ExitCode(kind)
}
