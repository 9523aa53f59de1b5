package staging

const stagingPrompt = "Place the Uploaded Product realistically in the room do not make any changes on the product. Natural daylight with accurate shadows. Photorealistic, correct perspective, proper occlusion if needed, clean blending."

// BuildStagingPrompt returns the instruction sent with every staging request.
// Room analysis is accepted by the API but does not change the prompt.
func BuildStagingPrompt() string {
	return stagingPrompt
}
