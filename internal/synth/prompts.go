package synth

import (
	"strings"
	"text/template"
)

// Prompt pairs the system instruction with the user message template
type Prompt struct {
	System *template.Template
	User   *template.Template
}

func newPrompt(name, system, user string) Prompt {
	return Prompt{
		System: template.Must(template.New(name + ".system").Parse(system)),
		User:   template.Must(template.New(name + ".user").Parse(user)),
	}
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

var topicPrompt = newPrompt("topic", `
Bạn là chuyên gia y tế. Nhiệm vụ: Đọc toàn bộ kiến thức về một bệnh (Context) và soạn bộ câu hỏi trắc nghiệm Đúng/Sai.

YÊU CẦU NGHIÊM NGẶT:
1. Số lượng: Phải sinh ra ĐỦ {{.Target}} câu hỏi.
2. Phân bổ nội dung (BẮT BUỘC):
   - Khoảng 10-15 câu về: Nguyên nhân, Cơ chế bệnh sinh, Đường lây.
   - Khoảng 15-20 câu về: Triệu chứng lâm sàng, Dấu hiệu nhận biết, Chẩn đoán.
   - Khoảng 15-20 câu về: Điều trị, Thuốc, Phòng ngừa và Biến chứng.
3. Chất lượng:
   - Câu Sai phải có tính đánh lừa cao (ví dụ sai về nhóm thuốc, nhầm triệu chứng sang bệnh khác).
   - KHÔNG đặt câu hỏi quá dễ hoặc ngớ ngẩn.
4. Định dạng: Trả về duy nhất một JSON object {"bo_cau_hoi": [{"cau_hoi": "...", "dap_an": "Đúng" hoặc "Sai"}]}.
`, `
Tên bệnh: {{.Topic}}

Dựa vào thông tin chi tiết dưới đây, hãy sinh ra {{.Target}} câu hỏi Đúng/Sai bao phủ mọi khía cạnh (Nguyên nhân, Triệu chứng, Điều trị).

Thông tin tham khảo:
---
{{.Context}}
---
`)

var sectionPrompt = newPrompt("section", `
Bạn là chuyên gia y tế. Tạo bộ câu hỏi trắc nghiệm Đúng/Sai.
`, `
Bệnh: {{.Topic}}
Mục: {{.Category}}
Nội dung: "{{.Context}}"

YÊU CẦU:
1. Sinh 4-6 câu nhận định (Statement).
2. 50% câu ĐÚNG, 50% câu SAI.
3. Input là câu KHẲNG ĐỊNH. KHÔNG viết câu hỏi.
4. Chỉ trả về JSON List: [{"input": "...", "output": "Đúng" hoặc "Sai"}]
`)

var crosslingualPrompt = newPrompt("crosslingual", `
Bạn là chuyên gia y tế song ngữ Anh-Việt. Nhiệm vụ của bạn là tạo dữ liệu huấn luyện cho mô hình AI y tế Việt Nam.
`, `
Dựa trên thông tin dưới đây từ MedlinePlus:

**Chủ đề:** {{.Topic}}
**Nội dung:** "{{.Context}}"

YÊU CẦU:
1. Tạo 4-6 nhận định (statement) bằng **TIẾNG VIỆT**.
2. Đảm bảo 50% là nhận định ĐÚNG (True), 50% là nhận định SAI (False).
3. Nhận định phải dựa hoàn toàn vào nội dung cung cấp, không bịa đặt.
4. Với câu SAI, hãy sửa đổi một chi tiết quan trọng (ví dụ: nguyên nhân, triệu chứng, tên thuốc) để làm nó sai.
5. Trả về định dạng JSON List chính xác: [{"input": "...", "output": "Đúng" hoặc "Sai"}]
`)

var pubmedPrompt = newPrompt("pubmedqa", `
Bạn là chuyên gia dữ liệu y tế. Nhiệm vụ: Chuyển đổi danh sách câu hỏi (Tiếng Anh) sang câu khẳng định (Tiếng Việt).

INPUT: JSON {id, question, label}.
OUTPUT: JSON List [{id, cau_hoi, dap_an}].

QUY TẮC:
1. Dựa vào 'label' để viết 'cau_hoi' (Tiếng Việt):
   - yes -> Viết câu khẳng định ĐÚNG thực tế. (Đáp án: Đúng)
   - no -> Viết câu khẳng định SAI thực tế. (Đáp án: Sai)
2. 'cau_hoi' là câu kể.
3. Trả về JSON thuần.
`, `{{.Context}}`)
