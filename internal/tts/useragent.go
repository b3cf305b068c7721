package tts

import "math/rand/v2"

// UserAgentPicker chooses the user-agent header for one outbound request.
type UserAgentPicker func() string

// RandomUserAgent picks uniformly from pool on every call.
func RandomUserAgent(pool []string) UserAgentPicker {
	agents := append([]string(nil), pool...)
	return func() string {
		if len(agents) == 0 {
			return ""
		}
		return agents[rand.IntN(len(agents))]
	}
}

// FixedUserAgent always returns ua.
func FixedUserAgent(ua string) UserAgentPicker {
	return func() string { return ua }
}
