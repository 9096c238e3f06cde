//go:build ignore
// +build ignore

// Sample Lead File Generator
// Produces a synthetic delimited lead file in the bulk upload format, and can
// optionally POST it straight to a running server's upload endpoint.
//
// Usage:
//   go run scripts/generate_sample_leads.go --rows=5000 --out=sample_leads.csv
//   go run scripts/generate_sample_leads.go --rows=500 --upload=http://localhost:8080
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
)

var (
	jobs      = []string{"admin.", "technician", "services", "management", "retired", "blue-collar", "unemployed", "entrepreneur", "housemaid", "self-employed", "student", "unknown"}
	maritals  = []string{"married", "single", "divorced"}
	education = []string{"primary", "secondary", "tertiary", "unknown"}
	months    = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
	outcomes  = []string{"success", "failure", "unknown", "other"}
	contacts  = []string{"cellular", "telephone", "unknown"}
)

func yesNo(r *rand.Rand) string {
	if r.Intn(2) == 0 {
		return "no"
	}
	return "yes"
}

func pick(r *rand.Rand, vals []string) string {
	return vals[r.Intn(len(vals))]
}

func generate(rows int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	var b bytes.Buffer
	b.WriteString("name,email,phone,age,job,marital,education,default,balance,housing,loan,day,month,duration,campaign,pdays,previous,poutcome,contact\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "Sample Lead %d,sample%d@example.com,+1555%07d,%d,%s,%s,%s,%s,%d,%s,%s,%d,%s,%d,%d,%d,%d,%s,%s\n",
			i+1, i+1, i+1,
			18+r.Intn(70),
			pick(r, jobs), pick(r, maritals), pick(r, education),
			yesNo(r),
			r.Intn(50000)-2000,
			yesNo(r), yesNo(r),
			1+r.Intn(28), pick(r, months),
			r.Intn(1200),
			1+r.Intn(10),
			r.Intn(400)-1,
			r.Intn(5),
			pick(r, outcomes), pick(r, contacts))
	}
	return b.Bytes()
}

func upload(baseURL string, data []byte, limit int) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "sample_leads.csv")
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if limit > 0 {
		w.WriteField("limit", fmt.Sprintf("%d", limit))
	}
	w.Close()

	url := strings.TrimRight(baseURL, "/") + "/api/v1/leads/upload-csv"
	resp, err := http.Post(url, w.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)
	log.Printf("POST %s -> %d %s", url, resp.StatusCode, strings.TrimSpace(string(payload)))
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}
	return nil
}

func main() {
	rows := flag.Int("rows", 1000, "number of lead rows to generate")
	seed := flag.Int64("seed", 42, "PRNG seed, fixed for reproducible files")
	out := flag.String("out", "sample_leads.csv", "output file path")
	uploadURL := flag.String("upload", "", "server base URL; when set, POST the file instead of writing it")
	limit := flag.Int("limit", 0, "sampling limit passed to the upload endpoint")
	flag.Parse()

	data := generate(*rows, *seed)

	if *uploadURL != "" {
		if err := upload(*uploadURL, data, *limit); err != nil {
			log.Fatalf("upload failed: %v", err)
		}
		return
	}

	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("Wrote %d rows to %s (%d bytes)", *rows, *out, len(data))
}
