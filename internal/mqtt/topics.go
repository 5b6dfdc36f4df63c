package mqtt

// Topic layout for network devices. A camera listens on <base>/capture and
// answers on <base>/result; the booth announces itself on <client_id>/status.

// CaptureTopic returns the topic capture requests are published to.
func CaptureTopic(base string) string { return base + "/capture" }

// ResultTopic returns the topic a camera answers on.
func ResultTopic(base string) string { return base + "/result" }

// StatusTopic returns the retained online/offline topic of a client.
func StatusTopic(clientID string) string { return clientID + "/status" }
