package padseq

type (
	// AudioSource renders interleaved stereo float32 audio: dst has
	// 2*frames values and must be completely overwritten.
	AudioSource interface {
		Process(dst []float32)
	}

	// AudioPlayer is a handle to an audio source being played; closing it
	// stops the playback.
	AudioPlayer interface {
		Close() error
	}

	// AudioContext opens audio sources for playback on an output device.
	AudioContext interface {
		Play(source AudioSource) (AudioPlayer, error)
		Close() error
	}
)
