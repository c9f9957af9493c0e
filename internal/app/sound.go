package app

import "gift-experience-service/internal/domain"

// SoundPlayer plays clips on the client. Calls are fire-and-forget: a clip that
// fails to play (autoplay blocked, slow client) is the player's problem and
// never changes experience state.
type SoundPlayer interface {
	Play(clip domain.Clip)
	Loop(clip domain.Clip)
	Pause(clip domain.Clip)
}

// NopPlayer is used by front ends without audio.
type NopPlayer struct{}

func (NopPlayer) Play(domain.Clip)  {}
func (NopPlayer) Loop(domain.Clip)  {}
func (NopPlayer) Pause(domain.Clip) {}
