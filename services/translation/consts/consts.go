package consts

const (
	// Audio content types accepted by the transcription service
	ContentTypeMP3  = "audio/mp3"
	ContentTypeMPEG = "audio/mpeg"
	ContentTypeWAV  = "audio/wav"
	ContentTypeFLAC = "audio/flac"
	ContentTypeOGG  = "audio/ogg"
	ContentTypeWebM = "audio/webm"

	// Default settings
	DefaultContentType       = ContentTypeMP3
	DefaultModelID           = "en-id"
	DefaultTranslatorVersion = "2018-05-01"
	MaxAudioSize             = 100 * 1024 * 1024 // 100MB, the recognize endpoint limit
)

// Backends
const (
	BackendWatson  = "watson"
	BackendWhisper = "whisper"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ContentTypeByExt maps file extensions to audio content types.
var ContentTypeByExt = map[string]string{
	".mp3":  ContentTypeMP3,
	".wav":  ContentTypeWAV,
	".flac": ContentTypeFLAC,
	".ogg":  ContentTypeOGG,
	".opus": ContentTypeOGG,
	".webm": ContentTypeWebM,
	".mpeg": ContentTypeMPEG,
}
