package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ColumnSource exposes numeric columns by name.
type ColumnSource interface {
	Column(name string) ([]float64, error)
}

// CompleteFrame builds a DataFrame of the named columns, keeping only the rows
// where every column holds a value.
func CompleteFrame(src ColumnSource, names ...string) (dataframe.DataFrame, error) {
	if len(names) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no columns requested")
	}

	cols := make([][]float64, len(names))
	for j, name := range names {
		col, err := src.Column(name)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		if j > 0 && len(col) != len(cols[0]) {
			return dataframe.DataFrame{}, fmt.Errorf("column %q has %d rows, want %d", name, len(col), len(cols[0]))
		}
		cols[j] = col
	}

	kept := make([][]float64, len(names))
	for i := range cols[0] {
		complete := true
		for j := range cols {
			if math.IsNaN(cols[j][i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for j := range cols {
			kept[j] = append(kept[j], cols[j][i])
		}
	}
	if len(kept[0]) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no complete rows across %v", names)
	}

	ss := make([]series.Series, len(names))
	for j, name := range names {
		ss[j] = series.New(kept[j], series.Float, name)
	}
	df := dataframe.New(ss...)
	return df, df.Err
}

// Description holds summary statistics, one row per statistic and one value per column.
type Description struct {
	Columns    []string
	Statistics []string
	Values     [][]float64
}

// Value returns the statistic for column, or NaN when either is unknown.
func (d *Description) Value(statistic, column string) float64 {
	for i, s := range d.Statistics {
		if s != statistic {
			continue
		}
		for j, c := range d.Columns {
			if c == column {
				return d.Values[i][j]
			}
		}
	}
	return math.NaN()
}

// Describe extends gota's Describe with count, skewness and excess kurtosis.
func Describe(df dataframe.DataFrame) (*Description, error) {
	desc := df.Describe()
	if desc.Err != nil {
		return nil, desc.Err
	}

	names := df.Names()
	d := &Description{Columns: names}

	d.Statistics = append(d.Statistics, "count")
	count := make([]float64, len(names))
	for j := range names {
		count[j] = float64(df.Nrow())
	}
	d.Values = append(d.Values, count)

	labels := desc.Col("column").Records()
	for i, label := range labels {
		row := make([]float64, len(names))
		for j, name := range names {
			row[j] = desc.Col(name).Elem(i).Float()
		}
		d.Statistics = append(d.Statistics, label)
		d.Values = append(d.Values, row)
	}

	skew := make([]float64, len(names))
	kurt := make([]float64, len(names))
	for j, name := range names {
		x := df.Col(name).Float()
		skew[j] = stat.Skew(x, nil)
		kurt[j] = stat.ExKurtosis(x, nil)
	}
	d.Statistics = append(d.Statistics, "skewness", "kurtosis")
	d.Values = append(d.Values, skew, kurt)

	return d, nil
}

// WriteCSV writes the description with statistics as rows.
func (d *Description) WriteCSV(w io.Writer) error {
	return writeTable(w, "statistic", d.Statistics, d.Columns, d.Values)
}

// CorrelationMatrix holds pairwise Pearson correlations.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the correlation between columns a and b, or NaN when unknown.
func (c *CorrelationMatrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, name := range c.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return c.Values[i][j]
}

// Correlations computes the Pearson correlation matrix of every column in df.
func Correlations(df dataframe.DataFrame) (*CorrelationMatrix, error) {
	names := df.Names()
	rows, cols := df.Nrow(), len(names)
	if rows < 2 || cols == 0 {
		return nil, fmt.Errorf("need at least 2 rows for correlations, have %d", rows)
	}

	x := mat.NewDense(rows, cols, nil)
	for j, name := range names {
		x.SetCol(j, df.Col(name).Float())
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)

	values := make([][]float64, cols)
	for i := range values {
		values[i] = make([]float64, cols)
		for j := range values[i] {
			values[i][j] = corr.At(i, j)
		}
	}
	return &CorrelationMatrix{Columns: names, Values: values}, nil
}

// WriteCSV writes the matrix with a leading label column.
func (c *CorrelationMatrix) WriteCSV(w io.Writer) error {
	return writeTable(w, "", c.Columns, c.Columns, c.Values)
}

func writeTable(w io.Writer, corner string, rowLabels, colLabels []string, values [][]float64) error {
	writer := csv.NewWriter(w)
	header := append([]string{corner}, colLabels...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, label := range rowLabels {
		record := make([]string, 0, len(colLabels)+1)
		record = append(record, label)
		for _, v := range values[i] {
			record = append(record, strconv.FormatFloat(v, 'g', 10, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
