package frame_test

import (
	"fmt"
	"log"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/schema"
)

// ExampleEncode shows the frame produced for a two-field record
func ExampleEncode() {
	s, err := schema.NewBuilder(24).Field(1, 0, 4).Field(3, 4, 20).Build()
	if err != nil {
		log.Fatal(err)
	}

	record := make([]byte, 24)
	record[0] = 42
	copy(record[4:], "Hello, World!")

	buf := make([]byte, 256)
	n, err := frame.Encode(buf, record, s, 1)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d bytes\n", n)
	fmt.Printf("% x\n", buf[:24])

	// Output:
	// 48 bytes
	// 01 00 00 00 02 00 00 00 01 00 00 00 00 00 04 00 03 00 00 00 04 00 14 00
}

type sensorV1 struct {
	Reading int32    `frame:"1"`
	Label   [20]byte `frame:"3"`
}

type sensorV2 struct {
	Reading int32    `frame:"1"`
	Label   [40]byte `frame:"3"`
	Unit    [20]byte `frame:"4"`
}

// ExampleCodec demonstrates a newer reader accepting a frame from an older writer
func ExampleCodec() {
	writer, err := frame.NewCodec[sensorV1](1)
	if err != nil {
		log.Fatal(err)
	}
	reader, err := frame.NewCodec[sensorV2](1)
	if err != nil {
		log.Fatal(err)
	}

	in := sensorV1{Reading: 42}
	copy(in.Label[:], "boiler")
	encoded, err := writer.Marshal(&in)
	if err != nil {
		log.Fatal(err)
	}

	var out sensorV2
	copy(out.Unit[:], "celsius")
	report, err := reader.DecodeReport(encoded, &out)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(out.Reading)
	fmt.Printf("%s\n", out.Label[:6])
	fmt.Printf("%s\n", out.Unit[:7])
	fmt.Printf("matched=%d missing=%d\n", report.Matched, report.Missing)

	// Output:
	// 42
	// boiler
	// celsius
	// matched=2 missing=1
}
