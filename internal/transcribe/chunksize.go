package transcribe

// PCMBytesPerSecond is the bitrate of the 16kHz mono signed 16-bit PCM
// intermediate format every chunk is re-encoded to before upload.
const PCMBytesPerSecond = 32000

// DefaultChunkSeconds is the chunk duration used when the source file's
// size or duration cannot be determined.
const DefaultChunkSeconds = 600

// SelectChunkDuration picks a chunk length in seconds that keeps each
// re-encoded chunk below the provider upload cap.
//
// The naive ratio fileSize/duration underestimates the chunk size whenever
// the source bitrate is lower than the PCM intermediate format's, so the
// effective rate is floored at PCMBytesPerSecond. Non-positive inputs fall
// back to defaultSeconds; the result is never below one second.
func SelectChunkDuration(fileSizeBytes int64, durationSeconds float64, maxUploadBytes int64, defaultSeconds int) int {
	if fileSizeBytes <= 0 || durationSeconds <= 0 || maxUploadBytes <= 0 {
		return max(1, defaultSeconds)
	}

	bytesPerSecond := float64(fileSizeBytes) / durationSeconds
	bytesPerSecond = max(bytesPerSecond, PCMBytesPerSecond)

	chunkSeconds := int(float64(maxUploadBytes) / bytesPerSecond)
	return max(1, chunkSeconds)
}
