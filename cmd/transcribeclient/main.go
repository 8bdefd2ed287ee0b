// Command transcribeclient submits an audio file to a running meeting
// transcription service and polls until the transcript is ready.
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

func main() {
	audioFile := flag.String("audio", "../../testdata/sample.wav", "Path to the audio file to transcribe")
	serverAddr := flag.String("server", "http://localhost:8080", "Service base URL")
	mode := flag.String("mode", "async", "Transcription mode: async (batch) or sync (diarizing)")
	meetingType := flag.String("meeting-type", "General", "Meeting type hint for the sync mode")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Delay between status polls in async mode")
	maxWait := flag.Duration("max-wait", 15*time.Minute, "Give up after this long")
	flag.Parse()

	audio, err := os.ReadFile(*audioFile)
	if err != nil {
		log.Fatalf("Failed to read audio file: %v", err)
	}
	if strings.EqualFold(filepath.Ext(*audioFile), ".wav") {
		inspectWAV(audio)
	}

	client := &http.Client{Timeout: 20 * time.Minute}

	switch *mode {
	case "async":
		runAsync(client, *serverAddr, *audioFile, audio, *pollInterval, *maxWait)
	case "sync":
		runSync(client, *serverAddr, *audioFile, audio, *meetingType)
	default:
		log.Fatalf("Unknown mode %q, want async or sync", *mode)
	}
}

// inspectWAV logs the header fields of a WAV upload. The service
// transcodes whatever it receives, so a mismatched format is only worth
// a warning.
func inspectWAV(audio []byte) {
	if len(audio) < wavHeaderSize {
		log.Fatal("File too short to be a WAV file")
	}
	header := audio[:wavHeaderSize]
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)
	if audioFormat != 1 {
		log.Printf("Warning: non-PCM WAV, the service will transcode it")
	}
}

func uploadMultipart(client *http.Client, endpoint, filename string, audio []byte, fields map[string]string) (*http.Response, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("audio", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return client.Do(req)
}

func decodeOrFatal(resp *http.Response, out any) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}
	if resp.StatusCode >= 300 {
		log.Fatalf("Server returned %d: %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Fatalf("Failed to decode response: %v\n%s", err, data)
	}
}

func runAsync(client *http.Client, serverAddr, filename string, audio []byte, pollInterval, maxWait time.Duration) {
	log.Printf("Uploading %s (%d bytes)", filename, len(audio))
	resp, err := uploadMultipart(client, serverAddr+"/v1/transcriptions", filename, audio, nil)
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}

	var job struct {
		OperationID string `json:"operationId"`
		StagingKey  string `json:"stagingKey"`
		Timestamp   string `json:"timestamp"`
	}
	decodeOrFatal(resp, &job)
	log.Printf("Job submitted: operationId=%s timestamp=%s", job.OperationID, job.Timestamp)

	statusURL := serverAddr + "/v1/transcriptions/status?" + url.Values{
		"id":         {job.OperationID},
		"stagingKey": {job.StagingKey},
		"timestamp":  {job.Timestamp},
	}.Encode()

	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)

		resp, err := client.Get(statusURL)
		if err != nil {
			log.Fatalf("Poll failed: %v", err)
		}
		var status struct {
			Completed bool   `json:"completed"`
			Text      string `json:"text"`
			RawText   string `json:"rawText"`
		}
		decodeOrFatal(resp, &status)

		if !status.Completed {
			log.Printf("Still running...")
			continue
		}
		fmt.Println(status.Text)
		return
	}
	log.Fatalf("Gave up after %v", maxWait)
}

func runSync(client *http.Client, serverAddr, filename string, audio []byte, meetingType string) {
	log.Printf("Uploading %s (%d bytes) for synchronous transcription", filename, len(audio))
	resp, err := uploadMultipart(client, serverAddr+"/v1/transcriptions/sync", filename, audio,
		map[string]string{"meetingType": meetingType})
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}

	var result struct {
		Completed   bool   `json:"completed"`
		Text        string `json:"text"`
		RawText     string `json:"rawText"`
		MeetingType string `json:"meetingType"`
	}
	decodeOrFatal(resp, &result)
	fmt.Println(result.Text)
}
