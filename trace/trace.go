// Package trace records the instructions executed by the machine in a
// Parquet file, one row per instruction, and loads such a file back for
// display.
package trace

import (
	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// Step status values.
const (
	STATUS_OK    = "ok"
	STATUS_FAULT = "fault"
)

// Step is one executed instruction.
type Step struct {
	Tick   int64  `parquet:"name=tick, type=INT64"`
	Pc     int64  `parquet:"name=pc, type=INT64"`
	LineNo int64  `parquet:"name=line, type=INT64"`
	Opcode string `parquet:"name=opcode, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	A      int64  `parquet:"name=a, type=INT64"`
	B      int64  `parquet:"name=b, type=INT64"`
	C      int64  `parquet:"name=c, type=INT64"`
	Status string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// Writer appends steps to a Parquet file.
type Writer struct {
	file   source.ParquetFile
	writer *writer.ParquetWriter
	rows   int
}

// Create a trace file at path.
func Create(path string) (tw *Writer, err error) {
	file, err := local.NewLocalFileWriter(path)
	if err != nil {
		return
	}

	pw, err := writer.NewParquetWriter(file, new(Step), 1)
	if err != nil {
		file.Close()
		return
	}

	tw = &Writer{
		file:   file,
		writer: pw,
	}
	return
}

// Record appends a step.
func (tw *Writer) Record(step Step) (err error) {
	err = tw.writer.Write(step)
	if err != nil {
		return
	}
	tw.rows++
	return
}

// Rows returns the number of recorded steps.
func (tw *Writer) Rows() int {
	return tw.rows
}

// Close flushes the trace and closes the file.
func (tw *Writer) Close() (err error) {
	err = tw.writer.WriteStop()
	close_err := tw.file.Close()
	if err == nil {
		err = close_err
	}
	return
}

// Read returns every step in a trace file.
func Read(path string) (steps []Step, err error) {
	file, err := local.NewLocalFileReader(path)
	if err != nil {
		return
	}
	defer file.Close()

	pr, err := reader.NewParquetReader(file, new(Step), 1)
	if err != nil {
		return
	}
	defer pr.ReadStop()

	steps = make([]Step, pr.GetNumRows())
	if len(steps) == 0 {
		return
	}

	err = pr.Read(&steps)
	if err != nil {
		steps = nil
		return
	}
	return
}

// Load reads a trace file as a dataframe, one series per column.
func Load(path string) (df *dataframe.DataFrame, err error) {
	steps, err := Read(path)
	if err != nil {
		return
	}

	init := &dataframe.SeriesInit{Capacity: len(steps)}
	tick := dataframe.NewSeriesInt64("tick", init)
	pc := dataframe.NewSeriesInt64("pc", init)
	line := dataframe.NewSeriesInt64("line", init)
	opcode := dataframe.NewSeriesString("opcode", init)
	a := dataframe.NewSeriesInt64("a", init)
	b := dataframe.NewSeriesInt64("b", init)
	c := dataframe.NewSeriesInt64("c", init)
	status := dataframe.NewSeriesString("status", init)

	for _, step := range steps {
		tick.Append(step.Tick)
		pc.Append(step.Pc)
		line.Append(step.LineNo)
		opcode.Append(step.Opcode)
		a.Append(step.A)
		b.Append(step.B)
		c.Append(step.C)
		status.Append(step.Status)
	}

	df = dataframe.NewDataFrame(tick, pc, line, opcode, a, b, c, status)
	return
}
