package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"vecstore/internal/storage"
)

func main() {
	inputFile := flag.String("input", "", "Input WAL file path (required)")
	outputFile := flag.String("output", "", "Output WAL file path (required)")
	outputFormat := flag.String("format", "text", "Output format: 'binary' or 'text'")
	flag.Parse()

	if *inputFile == "" || *outputFile == "" {
		fmt.Println("Usage: wal_converter -input <file> -output <file> [-format binary|text]")
		fmt.Println("\nConvert WAL files between binary and text formats")
		fmt.Println("\nExamples:")
		fmt.Println("  # Convert binary WAL to text for inspection")
		fmt.Println("  wal_converter -input data.wal -output data.txt -format text")
		fmt.Println("\n  # Convert text WAL back to binary")
		fmt.Println("  wal_converter -input data.txt -output data.wal -format binary")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *outputFormat != "binary" && *outputFormat != "text" {
		fmt.Printf("Error: format must be 'binary' or 'text', got '%s'\n", *outputFormat)
		os.Exit(1)
	}

	if err := convertWAL(*inputFile, *outputFile, *outputFormat); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("converted %s to %s (format: %s)\n", *inputFile, *outputFile, *outputFormat)
}

func convertWAL(inputPath, outputPath, outputFormat string) error {
	inputFile, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer inputFile.Close()

	outputFileHandle, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFileHandle.Close()

	records, err := readAllRecords(bufio.NewReader(inputFile))
	if err != nil {
		return fmt.Errorf("failed to read input records: %w", err)
	}

	fmt.Printf("read %d records from input file\n", len(records))

	outputEncoder := storage.NewEncoder(outputFormat)

	writer := bufio.NewWriter(outputFileHandle)
	for i, record := range records {
		if err := outputEncoder.EncodeRecord(writer, &record); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return writer.Flush()
}

// readAllRecords auto-detects the input format by trying binary first
// and falling back to text on the first decode failure.
func readAllRecords(reader *bufio.Reader) ([]storage.WALRecord, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	binaryDecoder := storage.NewEncoder("binary")
	binaryReader := bufio.NewReader(bytes.NewReader(data))
	var records []storage.WALRecord
	for {
		record, err := binaryDecoder.DecodeRecord(binaryReader)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return readAllRecordsText(bufio.NewReader(bytes.NewReader(data)))
		}
		records = append(records, *record)
	}
}

func readAllRecordsText(reader *bufio.Reader) ([]storage.WALRecord, error) {
	textDecoder := storage.NewEncoder("text")
	var records []storage.WALRecord
	for {
		record, err := textDecoder.DecodeRecord(reader)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode as both binary and text: %w", err)
		}
		records = append(records, *record)
	}
}
