package media

import "fmt"

// Environment variables for custom tool paths.
const (
	envFFmpegPath  = "DUBLINE_FFMPEG"
	envFFprobePath = "DUBLINE_FFPROBE"
)

// Resolver locates the ffmpeg and ffprobe binaries.
type Resolver struct {
	env envProvider
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{env: osEnvProvider{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds both binaries using the following precedence:
//  1. DUBLINE_FFMPEG / DUBLINE_FFPROBE environment variables (error if set
//     but invalid)
//  2. System PATH
func (r *Resolver) Resolve() (ffmpegPath, ffprobePath string, err error) {
	ffmpegPath, err = r.resolveOne(envFFmpegPath, "ffmpeg")
	if err != nil {
		return "", "", err
	}
	ffprobePath, err = r.resolveOne(envFFprobePath, "ffprobe")
	if err != nil {
		return "", "", err
	}
	return ffmpegPath, ffprobePath, nil
}

func (r *Resolver) resolveOne(envKey, binary string) (string, error) {
	if envPath := r.env.Getenv(envKey); envPath != "" {
		if _, err := r.env.LookPath(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found", ErrNotFound, envKey, envPath)
		}
		return envPath, nil
	}
	path, err := r.env.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not on PATH (install it or set %s)", ErrNotFound, binary, envKey)
	}
	return path, nil
}
