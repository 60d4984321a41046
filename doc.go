// Package txt2pdf converts plain-text files into paginated documents.
//
// Input may mix right-to-left and left-to-right script and may contain
// pipe-delimited tables. Large inputs are split into several artifacts so
// that each stays under a soft size budget.
//
// # Quick Start
//
//	conv, err := txt2pdf.NewConverter(
//	    txt2pdf.WithFont("Vazir", "font/Vazirmatn-Regular.ttf"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	report := conv.ConvertFile(ctx, txt2pdf.FileInput{
//	    Path:      "input_txt/book.txt",
//	    OutputDir: "output_pdf",
//	})
//	if !report.OK() {
//	    log.Println(report.Error())
//	}
//
// # Pipeline
//
//  1. The byte size of the text and the size budget give a chunk count.
//  2. The text is cut into contiguous rune ranges, one per chunk.
//  3. Each chunk is classified line by line into paragraphs, spacers and
//     tables; prose lines are shaped for right-to-left display.
//  4. A document backend writes one artifact per chunk.
//
// Chunks of a file render concurrently on a bounded pool, and ConvertBatch
// applies the same bound across files. A failing chunk never stops its
// siblings; failures are collected on the FileReport.
//
// # Naming
//
// A file that fits in one chunk produces <stem>.<ext>. Larger files produce
// <stem>_part1.<ext>, <stem>_part2.<ext>, and so on.
package txt2pdf
