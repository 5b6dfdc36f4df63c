package mqtt

import "errors"

// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscribe operation fails.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe operation fails.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrAlreadyEnabled is returned by Trigger.Enable on an armed trigger.
	ErrAlreadyEnabled = errors.New("mqtt: trigger already enabled")

	// ErrCameraBusy is reported when a capture is requested while one is pending.
	ErrCameraBusy = errors.New("mqtt: camera busy")

	// ErrCameraShutdown is reported for captures requested after Shutdown,
	// and for a capture still pending when Shutdown is called.
	ErrCameraShutdown = errors.New("mqtt: camera shut down")

	// ErrCaptureTimeout is reported when no result arrives before the deadline.
	ErrCaptureTimeout = errors.New("mqtt: capture timed out")

	// ErrCaptureRejected is reported when the remote camera answers with a failure.
	ErrCaptureRejected = errors.New("mqtt: capture rejected by remote camera")
)
