package router

import (
	"fmt"
	"math/rand"
)

// Anonymous username vocabulary (spec §4.5, Glossary): an adjective and a
// noun drawn independently, suffixed with a 3-digit number.
var (
	usernameAdjectives = []string{
		"Anonymous", "Mystery", "Secret", "Hidden", "Unknown", "Phantom",
		"Shadow", "Silent", "Quiet", "Invisible", "Stranger", "Random",
	}
	usernameNouns = []string{
		"User", "Person", "Individual", "Someone", "Visitor", "Guest",
		"Wanderer", "Explorer", "Seeker", "Friend", "Companion", "Soul",
	}
)

// generateUsername builds a random <Adjective><Noun><100-999> anonymous
// display name. There is no third-party random generator anywhere in this
// project's dependency set, so this is the one component in the Router
// built directly on the standard library's math/rand: the output is a
// cosmetic display name, not a security token, so stdlib's non-CSPRNG is
// the right tool rather than a gap.
func generateUsername() string {
	adjective := usernameAdjectives[rand.Intn(len(usernameAdjectives))]
	noun := usernameNouns[rand.Intn(len(usernameNouns))]
	suffix := 100 + rand.Intn(900)
	return fmt.Sprintf("%s%s%d", adjective, noun, suffix)
}
