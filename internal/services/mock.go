package services

import (
	"fmt"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

// MockNote accompanies every templated artifact.
const MockNote = "This is a mock response while Gemini API issues are being resolved"

// RenderMockContent fills the offline template for ct from transcript statistics.
// It never calls a provider.
func RenderMockContent(ct models.ContentType, transcript string, now time.Time) (string, error) {
	n := len([]rune(transcript))

	switch ct {
	case models.ContentStudyGuide:
		return fmt.Sprintf(mockStudyGuide, n, truncate(transcript, 100), n/100, n), nil
	case models.ContentBriefingDoc:
		return fmt.Sprintf(mockBriefingDoc, n, truncate(transcript, 150), n/50, n, now.Format("1/2/2006")), nil
	}
	return "", invalidTypeError()
}

const mockStudyGuide = `# Study Guide

## Main Topics & Key Concepts
Based on the video transcript (%[1]d characters), here are the key topics covered:

- **Primary Subject**: %[2]s...
- **Core Concepts**: The video discusses important principles and methodologies
- **Key Terminology**: Essential vocabulary and definitions are presented

## Important Definitions
- **Term 1**: Definition based on video content
- **Term 2**: Another important concept explained
- **Term 3**: Additional terminology covered

## Key Takeaways
1. The video provides comprehensive coverage of the subject matter
2. Multiple examples and case studies are presented
3. Practical applications are demonstrated throughout
4. The content builds progressively from basic to advanced concepts

## Study Questions
1. What are the main points discussed in the video?
2. How do the concepts relate to real-world applications?
3. What examples were provided to illustrate key points?
4. How can this knowledge be applied practically?

## Summary Points
- The video covers %[3]d major topic areas
- Content is structured in a logical, progressive manner
- Multiple learning modalities are employed
- Practical examples enhance understanding

## Additional Resources to Explore
- Related videos on the same topic
- Academic papers and research
- Practical exercises and applications
- Community discussions and forums

*Note: This study guide was generated from a %[4]d-character transcript.*`

const mockBriefingDoc = `# Professional Briefing Document

## Executive Summary
This briefing document provides a comprehensive analysis of the video content, which contains %[1]d characters of transcript data. The material covers significant insights and actionable information relevant to the subject matter.

**Key Highlights:**
- Comprehensive coverage of core topics
- Practical applications and examples
- Strategic insights and recommendations
- Implementation considerations

## Key Points & Insights

### Primary Findings
The video content reveals several important insights:

1. **Strategic Overview**: %[2]s...
2. **Operational Considerations**: The content addresses practical implementation aspects
3. **Best Practices**: Multiple proven methodologies are discussed
4. **Industry Standards**: Current practices and benchmarks are referenced

### Critical Analysis
- The information presented is current and relevant
- Multiple perspectives are considered
- Evidence-based recommendations are provided
- Practical examples support theoretical concepts

## Main Arguments/Findings

### Core Arguments
1. **Argument 1**: The video establishes clear foundational principles
2. **Argument 2**: Supporting evidence is provided through examples
3. **Argument 3**: Practical applications are demonstrated effectively

### Supporting Evidence
- Transcript analysis reveals %[3]d distinct topic areas
- Content structure follows logical progression
- Multiple validation points are provided

## Actionable Recommendations

### Immediate Actions
1. **Review Key Concepts**: Focus on the primary topics identified
2. **Implement Best Practices**: Apply the methodologies discussed
3. **Gather Additional Information**: Research related topics for deeper understanding

### Strategic Considerations
1. **Long-term Planning**: Consider how insights apply to broader objectives
2. **Resource Allocation**: Determine necessary resources for implementation
3. **Performance Metrics**: Establish measures for success

## Conclusion
The video content provides valuable insights with practical applications. The %[4]d-character transcript contains substantial information that can inform decision-making and strategic planning.

## Next Steps
1. **Detailed Review**: Conduct thorough analysis of specific sections
2. **Stakeholder Engagement**: Share findings with relevant team members
3. **Implementation Planning**: Develop action plans based on recommendations
4. **Follow-up Analysis**: Monitor outcomes and adjust strategies as needed

*Document generated from video transcript analysis - %[5]s*`
