package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Speech output format of the TTS model.
const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1
	speechBitDepth   = 16
)

// Speech synthesizes text and returns raw PCM16 little-endian mono samples at
// SpeechSampleRate.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	cfg := &generationConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig:       &speechConfig{},
	}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = c.voice

	resp, err := c.generate(ctx, c.speechModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return nil, err
	}

	audio := resp.inlineData()
	if audio == nil {
		return nil, fmt.Errorf("%w: no audio in speech response", ErrEmptyResponse)
	}
	pcm, err := base64.StdEncoding.DecodeString(audio.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: audio is not base64: %v", ErrMalformedResponse, err)
	}
	return pcm, nil
}

// DecodePCM16 converts little-endian signed 16-bit samples into floats in
// [-1, 1). A trailing odd byte is ignored.
func DecodePCM16(pcm []byte) []float32 {
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		samples[i] = float32(v) / 32768
	}
	return samples
}

// EncodeWAV wraps PCM16 data in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	blockAlign := channels * speechBitDepth / 8
	dataLen := len(pcm) - len(pcm)%blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(speechBitDepth))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm[:dataLen])
	return buf.Bytes()
}
