// ABOUTME: Audio output package for playing and storing decoded PCM
// ABOUTME: Provides the Output interface with oto playback and WAV file sinks
// Package output provides PCM sinks.
//
// Oto plays 16-bit PCM through the system audio device with software
// volume. WAV writes PCM into a RIFF/WAVE file.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(audio.LinearPCM16(48000, 2))
//	err = out.Write(pcm)
package output
