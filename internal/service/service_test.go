package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"maestroai/internal/agent"
	"maestroai/internal/config"
	"maestroai/internal/domain"
	"maestroai/internal/llm"
	"maestroai/internal/port"
	"maestroai/internal/service"
	"maestroai/mocks"
)

func screenshot(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for x := 0; x < 12; x++ {
		img.Set(x, 4, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// hugePNGHeader declares a w x h RGBA image with no pixel data behind it.
func hugePNGHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8], ihdr[9] = 8, 6
	for _, c := range []struct {
		typ  string
		data []byte
	}{{"IHDR", ihdr}, {"IDAT", nil}, {"IEND", nil}} {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(c.data)))
		body := append([]byte(c.typ), c.data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	return buf.Bytes()
}

func signed(data []byte) []int {
	out := make([]int, len(data))
	for i, b := range data {
		out[i] = int(int8(b))
	}
	return out
}

func newClient(reply string, err error) *mocks.MockChatClient {
	c := new(mocks.MockChatClient)
	c.On("Provider").Return("kimi").Maybe()
	c.On("Model").Return("moonshot-v1-8k-vision-preview").Maybe()
	c.On("SupportsStructuredOutput").Return(false).Maybe()
	if err != nil {
		c.On("Complete", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	} else {
		c.On("Complete", mock.Anything, mock.Anything).Return(&port.ChatResponse{Text: reply}, nil).Maybe()
	}
	return c
}

func agentOptions() agent.Options {
	p := agent.DefaultRetryPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return agent.Options{Retry: p, Image: config.ImageConfig{MaxWidth: 2048, MaxHeight: 2048}}
}

func TestDefectService_FindDefects_Base64(t *testing.T) {
	client := newClient(`{"defects": [{"category": "UI_BUG", "reasoning": "overlapping labels"}]}`, nil)
	svc := service.NewDefectService(agent.NewDefectAgent(client, agentOptions()), 0)

	screen := domain.NewBase64Screen(base64.StdEncoding.EncodeToString(screenshot(t)))
	defects, err := svc.FindDefects(context.Background(), screen, nil)

	require.NoError(t, err)
	assert.Equal(t, []domain.Defect{{Category: "UI_BUG", Reasoning: "overlapping labels"}}, defects)
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestDefectService_FindDefects_SignedBytes(t *testing.T) {
	client := newClient(`{"defects": []}`, nil)
	svc := service.NewDefectService(agent.NewDefectAgent(client, agentOptions()), 0)

	assertion := "Login button is visible"
	defects, err := svc.FindDefects(context.Background(), domain.NewSignedByteScreen(signed(screenshot(t))), &assertion)

	require.NoError(t, err)
	assert.Empty(t, defects)
	assert.NotNil(t, defects)
}

func TestDefectService_FindDefects_InvalidImage(t *testing.T) {
	client := newClient("", nil)
	svc := service.NewDefectService(agent.NewDefectAgent(client, agentOptions()), 0)

	screen := domain.NewBase64Screen(base64.StdEncoding.EncodeToString([]byte("definitely not an image")))
	_, err := svc.FindDefects(context.Background(), screen, nil)

	assert.ErrorIs(t, err, domain.ErrImageDecode)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDefectService_FindDefects_OversizedHeaderRejected(t *testing.T) {
	client := newClient("", nil)
	svc := service.NewDefectService(agent.NewDefectAgent(client, agentOptions()), 0)

	screen := domain.NewBase64Screen(base64.StdEncoding.EncodeToString(hugePNGHeader(50000, 50000)))
	_, err := svc.FindDefects(context.Background(), screen, nil)

	assert.ErrorIs(t, err, domain.ErrImageProcessing)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestTextService_ExtractText_ConfiguredPixelCap(t *testing.T) {
	client := newClient("", nil)
	svc := service.NewTextService(agent.NewTextAgent(client, agentOptions()), 50)

	screen := domain.NewSignedByteScreen(signed(screenshot(t)))
	_, err := svc.ExtractText(context.Background(), screen, "q")

	assert.ErrorIs(t, err, domain.ErrImageProcessing)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDefectService_FindDefects_MalformedBase64(t *testing.T) {
	client := newClient("", nil)
	svc := service.NewDefectService(agent.NewDefectAgent(client, agentOptions()), 0)

	_, err := svc.FindDefects(context.Background(), domain.NewBase64Screen("%%%not-base64%%%"), nil)

	assert.ErrorIs(t, err, domain.ErrImageDecode)
}

func TestDefectService_FindDefects_AgentErrorPropagates(t *testing.T) {
	client := newClient("", llm.NewError("kimi", 503, errors.New("overloaded")))
	svc := service.NewDefectService(agent.NewDefectAgent(client, agentOptions()), 0)

	screen := domain.NewBase64Screen(base64.StdEncoding.EncodeToString(screenshot(t)))
	defects, err := svc.FindDefects(context.Background(), screen, nil)

	assert.Nil(t, defects)
	assert.ErrorIs(t, err, domain.ErrLLM)
	client.AssertNumberOfCalls(t, "Complete", 3)
}

func TestTextService_ExtractText(t *testing.T) {
	client := newClient("```json\n{\"text\": \"$12.99\"}\n```", nil)
	svc := service.NewTextService(agent.NewTextAgent(client, agentOptions()), 0)

	screen := domain.NewBase64Screen("data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot(t)))
	text, err := svc.ExtractText(context.Background(), screen, "What is the price?")

	require.NoError(t, err)
	assert.Equal(t, "$12.99", text)
}

func TestTextService_ExtractText_EmptyScreen(t *testing.T) {
	client := newClient("", nil)
	svc := service.NewTextService(agent.NewTextAgent(client, agentOptions()), 0)

	_, err := svc.ExtractText(context.Background(), domain.NewSignedByteScreen([]int{}), "q")

	assert.ErrorIs(t, err, domain.ErrImageDecode)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestTextService_ExtractText_ParseFailure(t *testing.T) {
	client := newClient("The price is twelve dollars.", nil)
	svc := service.NewTextService(agent.NewTextAgent(client, agentOptions()), 0)

	screen := domain.NewBase64Screen(base64.StdEncoding.EncodeToString(screenshot(t)))
	_, err := svc.ExtractText(context.Background(), screen, "price")

	assert.ErrorIs(t, err, domain.ErrResponseParse)
}
