// Package config loads audiokit conversion jobs.
//
// A job comes from three layers, later ones winning: an optional YAML file,
// a .env file in the working directory and AUDIOKIT_* environment
// variables.
//
//	job:
//	  input: song.flac
//	  output: song.opus
//	encoder:
//	  codec: opus
//	  bit_rate: 96000
//	  packet_duration_ms: 20
package config
